package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/postsvc/internal/logger"
	"github.com/vaughan-dsouza/postsvc/internal/middleware"
	"github.com/vaughan-dsouza/postsvc/internal/models"
	"github.com/vaughan-dsouza/postsvc/internal/store"
	"github.com/vaughan-dsouza/postsvc/internal/utils"
)

// PostStore is the record store the handlers delegate to.
type PostStore interface {
	Insert(ctx context.Context, in models.PostInput) (*models.Post, error)
	FindOne(ctx context.Context, columns []string, where store.Filter) (*models.Post, error)
	FindAll(ctx context.Context, columns []string) ([]models.Post, error)
	Update(ctx context.Context, changes store.Changes, where store.Filter) (int64, error)
	Delete(ctx context.Context, where store.Filter) (int64, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	Posts  *PostHandler
	Health *HealthHandler
}

func NewHandler(st PostStore) *Handler {
	return &Handler{
		Posts:  NewPostHandler(st),
		Health: NewHealthHandler(st),
	}
}

// Routes wires every endpoint behind the shared middleware stack. metrics
// may be nil, in which case /metrics is not served.
func (h *Handler) Routes(log logger.Logger, metrics *middleware.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	if metrics != nil {
		r.Use(metrics.Instrument)
	}
	r.Use(middleware.Recover)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.JSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Post("/create-post", h.Posts.CreatePost)
	r.Get("/get-latest-post", h.Posts.GetLatestPost)
	r.Get("/get-all-posts", h.Posts.GetAllPosts)
	r.Post("/update-post", h.Posts.UpdatePost)
	r.Post("/delete-post", h.Posts.DeletePost)

	r.Get("/healthz", h.Health.Check)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return r
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vaughan-dsouza/postsvc/internal/logger"
	"github.com/vaughan-dsouza/postsvc/internal/models"
	"github.com/vaughan-dsouza/postsvc/internal/store"
	"github.com/vaughan-dsouza/postsvc/internal/utils"
)

const (
	msgCreated      = "Record created successfully!"
	msgCreateFailed = "Unable to create a record!"
)

type PostHandler struct {
	Store PostStore
}

func NewPostHandler(st PostStore) *PostHandler {
	return &PostHandler{Store: st}
}

// ----------- Request/Response DTOs -------------

type createPostReq struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Content  *string `json:"content"`
}

// updatePostReq keeps content raw so an explicit null clears the column
// while an absent field leaves it alone.
type updatePostReq struct {
	ID       int64           `json:"id"`
	Title    *string         `json:"title"`
	Subtitle *string         `json:"subtitle"`
	Content  json.RawMessage `json:"content"`
}

type deletePostReq struct {
	ID int64 `json:"id"`
}

type messageResp struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post,omitempty"`
}

type affectedResp struct {
	AffectedRows int64 `json:"affected_rows"`
}

// empty is written whenever a read or write fails.
var empty = struct{}{}

// ---------------------- CREATE ----------------------

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var body createPostReq
	if err := utils.DecodeJSON(r, &body); err != nil {
		log.Warn("create post: invalid body", "error", err)
		utils.JSON(w, http.StatusBadRequest, messageResp{Message: msgCreateFailed})
		return
	}

	post, err := h.Store.Insert(r.Context(), models.PostInput{
		Title:    body.Title,
		Subtitle: body.Subtitle,
		Content:  body.Content,
	})
	if err != nil {
		log.Error("create post failed", "error", err)
		utils.JSON(w, statusFor(err), messageResp{Message: msgCreateFailed})
		return
	}

	log.Debug("post created", "id", post.ID)
	utils.JSON(w, http.StatusCreated, messageResp{Message: msgCreated, Post: post})
}

// ---------------------- GET ONE ----------------------

// GetLatestPost returns the post named by ?id=, or the newest post when no
// id is given. A missing post is answered with {}.
func (h *PostHandler) GetLatestPost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var where store.Filter
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Warn("get post: invalid id", "id", idStr, "error", err)
			utils.JSON(w, http.StatusBadRequest, empty)
			return
		}
		where = store.Filter{"id": id}
	}

	post, err := h.Store.FindOne(r.Context(), store.DefaultColumns, where)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSON(w, http.StatusOK, empty)
		return
	}
	if err != nil {
		log.Error("get post failed", "error", err)
		utils.JSON(w, statusFor(err), empty)
		return
	}

	utils.JSON(w, http.StatusOK, post)
}

// ---------------------- LIST ----------------------

func (h *PostHandler) GetAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.FindAll(r.Context(), store.DefaultColumns)
	if err != nil {
		logger.FromContext(r.Context()).Error("list posts failed", "error", err)
		utils.JSON(w, statusFor(err), empty)
		return
	}

	utils.JSON(w, http.StatusOK, posts)
}

// ---------------------- UPDATE ----------------------

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var body updatePostReq
	if err := utils.DecodeJSON(r, &body); err != nil {
		log.Warn("update post: invalid body", "error", err)
		utils.JSON(w, http.StatusBadRequest, empty)
		return
	}
	if body.ID == 0 {
		log.Warn("update post: missing id")
		utils.JSON(w, http.StatusBadRequest, empty)
		return
	}

	changes, err := body.changes()
	if err != nil {
		log.Warn("update post: invalid content", "error", err)
		utils.JSON(w, http.StatusBadRequest, empty)
		return
	}

	n, err := h.Store.Update(r.Context(), changes, store.Filter{"id": body.ID})
	if err != nil {
		log.Error("update post failed", "id", body.ID, "error", err)
		utils.JSON(w, statusFor(err), empty)
		return
	}

	utils.JSON(w, http.StatusOK, affectedResp{AffectedRows: n})
}

func (b updatePostReq) changes() (store.Changes, error) {
	changes := store.Changes{}
	if b.Title != nil {
		changes["title"] = *b.Title
	}
	if b.Subtitle != nil {
		changes["subtitle"] = *b.Subtitle
	}
	if len(b.Content) > 0 {
		var content *string
		if err := json.Unmarshal(b.Content, &content); err != nil {
			return nil, err
		}
		if content == nil {
			changes["content"] = nil
		} else {
			changes["content"] = *content
		}
	}
	return changes, nil
}

// ---------------------- DELETE ----------------------

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var body deletePostReq
	if err := utils.DecodeJSON(r, &body); err != nil {
		log.Warn("delete post: invalid body", "error", err)
		utils.JSON(w, http.StatusBadRequest, empty)
		return
	}
	if body.ID == 0 {
		log.Warn("delete post: missing id")
		utils.JSON(w, http.StatusBadRequest, empty)
		return
	}

	n, err := h.Store.Delete(r.Context(), store.Filter{"id": body.ID})
	if err != nil {
		log.Error("delete post failed", "id", body.ID, "error", err)
		utils.JSON(w, statusFor(err), empty)
		return
	}

	utils.JSON(w, http.StatusOK, affectedResp{AffectedRows: n})
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidPost), errors.Is(err, store.ErrMalformedFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/postsvc/internal/models"
)

const postsTable = "posts"

type (
	// Filter selects rows by column equality.
	Filter map[string]any
	// Changes maps writable columns to their new values.
	Changes map[string]any
)

// DefaultColumns is the projection used when a read names no columns.
var DefaultColumns = []string{"id", "title"}

var (
	readableColumns = map[string]bool{
		"id": true, "title": true, "subtitle": true, "content": true,
		"created_at": true, "updated_at": true,
	}
	writableColumns = map[string]bool{
		"title": true, "subtitle": true, "content": true,
	}
	requiredColumns = map[string]bool{
		"title": true, "subtitle": true,
	}
)

// PostStore maps post operations onto the posts table.
type PostStore struct {
	db       *sqlx.DB
	sb       squirrel.StatementBuilderType
	validate *validator.Validate
	now      func() time.Time
}

func NewPostStore(db *sqlx.DB) *PostStore {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if sqlx.BindType(db.DriverName()) == sqlx.DOLLAR {
		placeholder = squirrel.Dollar
	}
	return &PostStore{
		db:       db,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		validate: validator.New(),
		now:      time.Now,
	}
}

// Insert creates a post and returns it with its assigned id.
func (s *PostStore) Insert(ctx context.Context, in models.PostInput) (*models.Post, error) {
	const op = "insert post"
	if err := s.validate.Struct(in); err != nil {
		return nil, persistenceErr(op, errors.Join(ErrInvalidPost, err))
	}

	now := s.now().UTC()
	query, args, err := s.sb.Insert(postsTable).
		Columns("title", "subtitle", "content", "created_at", "updated_at").
		Values(in.Title, in.Subtitle, nullable(in.Content), now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, persistenceErr(op, err)
	}

	post := models.Post{
		Title:     in.Title,
		Subtitle:  in.Subtitle,
		Content:   in.Content,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&post.ID); err != nil {
		return nil, persistenceErr(op, err)
	}
	return &post, nil
}

// FindOne returns the first post matching where, projected to columns. An
// empty filter selects the post with the highest id. ErrNotFound is
// returned when nothing matches.
func (s *PostStore) FindOne(ctx context.Context, columns []string, where Filter) (*models.Post, error) {
	const op = "find post"
	cols, err := projection(op, columns)
	if err != nil {
		return nil, err
	}

	q := s.sb.Select(cols...).From(postsTable).Limit(1)
	if len(where) == 0 {
		q = q.OrderBy("id DESC")
	} else {
		pred, err := predicate(op, where)
		if err != nil {
			return nil, err
		}
		q = q.Where(pred)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, persistenceErr(op, err)
	}

	var post models.Post
	if err := s.db.GetContext(ctx, &post, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, persistenceErr(op, err)
	}
	return &post, nil
}

// FindAll returns every post projected to columns.
func (s *PostStore) FindAll(ctx context.Context, columns []string) ([]models.Post, error) {
	const op = "find posts"
	cols, err := projection(op, columns)
	if err != nil {
		return nil, err
	}
	query, args, err := s.sb.Select(cols...).From(postsTable).OrderBy("id").ToSql()
	if err != nil {
		return nil, persistenceErr(op, err)
	}

	posts := []models.Post{}
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, persistenceErr(op, err)
	}
	return posts, nil
}

// Update applies changes to every post matching where and returns the
// number of rows affected.
func (s *PostStore) Update(ctx context.Context, changes Changes, where Filter) (int64, error) {
	const op = "update posts"
	if len(changes) == 0 {
		return 0, malformed(op, "no changes")
	}
	set := make(map[string]any, len(changes))
	for col, v := range changes {
		if !writableColumns[col] {
			return 0, malformed(op, "column %q is not writable", col)
		}
		if requiredColumns[col] && isBlank(v) {
			return 0, persistenceErr(op, ErrInvalidPost)
		}
		if p, ok := v.(*string); ok {
			v = nullable(p)
		}
		set[col] = v
	}
	pred, err := predicate(op, where)
	if err != nil {
		return 0, err
	}

	query, args, err := s.sb.Update(postsTable).
		SetMap(set).
		Set("updated_at", s.now().UTC()).
		Where(pred).
		ToSql()
	if err != nil {
		return 0, persistenceErr(op, err)
	}
	return s.exec(ctx, op, query, args)
}

// Delete removes every post matching where and returns the number of rows
// removed.
func (s *PostStore) Delete(ctx context.Context, where Filter) (int64, error) {
	const op = "delete posts"
	pred, err := predicate(op, where)
	if err != nil {
		return 0, err
	}
	query, args, err := s.sb.Delete(postsTable).Where(pred).ToSql()
	if err != nil {
		return 0, persistenceErr(op, err)
	}
	return s.exec(ctx, op, query, args)
}

// Ping reports whether the database still answers.
func (s *PostStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostStore) exec(ctx context.Context, op, query string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, persistenceErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, persistenceErr(op, err)
	}
	return n, nil
}

func projection(op string, columns []string) ([]string, error) {
	if len(columns) == 0 {
		return DefaultColumns, nil
	}
	for _, c := range columns {
		if !readableColumns[c] {
			return nil, malformed(op, "unknown column %q", c)
		}
	}
	return columns, nil
}

// predicate refuses an empty filter so writes never hit the whole table.
func predicate(op string, where Filter) (squirrel.Eq, error) {
	if len(where) == 0 {
		return nil, malformed(op, "empty filter")
	}
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !readableColumns[k] {
			return nil, malformed(op, "unknown column %q", k)
		}
	}
	return squirrel.Eq(where), nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case *string:
		return t == nil || *t == ""
	}
	return false
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

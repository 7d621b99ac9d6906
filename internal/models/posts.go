package models

import "time"

// Post is a row of the posts table. Fields outside the selected columns of
// a projected read keep their zero value and are omitted from JSON.
type Post struct {
	ID        int64      `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Subtitle  string     `db:"subtitle" json:"subtitle,omitempty"`
	Content   *string    `db:"content" json:"content,omitempty"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// PostInput carries the writable fields of a new post.
type PostInput struct {
	Title    string  `json:"title" validate:"required"`
	Subtitle string  `json:"subtitle" validate:"required"`
	Content  *string `json:"content"`
}

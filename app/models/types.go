package models

import "time"

// Post represents a blog post with comments.
type Post struct {
	ID        int        `json:"id"`
	Title     string     `json:"title" form:"title" validate:"required,max=100"`
	Content   string     `json:"content" form:"content" validate:"required"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Comments  []*Comment `json:"-" validate:"-"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id" validate:"required,gt=0"`
	Author    string    `json:"author" form:"author" validate:"required,max=50"`
	Content   string    `json:"content" form:"content" validate:"required,max=500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Post      *Post     `json:"-" validate:"-"`
}

// User is a registered account.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username" form:"username" validate:"required,max=150,username"`
	PasswordHash []byte    `json:"password_hash"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

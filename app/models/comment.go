package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	c.Author = strings.TrimSpace(c.Author)
	c.Content = strings.TrimSpace(c.Content)
	return Validate(c)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// BeforeUpdate refreshes the modification time.
func (c *Comment) BeforeUpdate() {
	c.UpdatedAt = time.Now().UTC()
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.Post = post
	c.PostID = post.ID
	return nil
}

// URL resolves to the page of the post the comment belongs to.
func (c *Comment) URL() string {
	if c.Post != nil {
		return c.Post.URL()
	}
	return (&Post{ID: c.PostID}).URL()
}

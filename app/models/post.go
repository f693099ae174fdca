package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// summaryWords is how many words of content the AJAX detail view returns.
const summaryWords = 100

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	return Validate(p)
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// BeforeUpdate refreshes the modification time.
func (p *Post) BeforeUpdate() {
	p.UpdatedAt = time.Now().UTC()
}

// URL is the canonical detail page of the post.
func (p *Post) URL() string {
	return "/" + strconv.Itoa(p.ID) + "/"
}

// Summary returns the content cut down to the first hundred words.
func (p *Post) Summary() string {
	return TruncateWords(p.Content, summaryWords)
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	comment.Post = p
	p.Comments = append(p.Comments, comment)
	return nil
}

// TruncateWords keeps the first n whitespace separated words of s. Runs of
// whitespace collapse to a single space and " ..." marks a cut.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if n < 0 {
		n = 0
	}
	if len(words) > n {
		return strings.Join(words[:n], " ") + " ..."
	}
	return strings.Join(words, " ")
}

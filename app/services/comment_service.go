package services

import (
	"context"
	"fmt"

	"askblog/app/models"
	"askblog/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// GetPost returns the post comments are being written for.
func (s *CommentService) GetPost(ctx context.Context, postID int) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// CreateComment attaches comment to the post postID and stores it. A
// missing post yields repositories.ErrNotFound.
func (s *CommentService) CreateComment(ctx context.Context, postID int, comment *models.Comment) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := comment.SetPost(post); err != nil {
		return err
	}

	if err := comment.Validate(); err != nil {
		return fmt.Errorf("invalid comment: %w", err)
	}

	comment.BeforeCreate()
	return s.commentRepo.Create(ctx, comment)
}

// GetComment retrieves a comment of the given post. A comment that exists
// under a different post is reported as not found.
func (s *CommentService) GetComment(ctx context.Context, postID, id int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, repositories.ErrNotFound
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment updates author and content of an existing comment
func (s *CommentService) UpdateComment(ctx context.Context, postID int, comment *models.Comment) error {
	existing, err := s.GetComment(ctx, postID, comment.ID)
	if err != nil {
		return err
	}

	// Preserve creation time and post
	comment.CreatedAt = existing.CreatedAt
	if err := comment.SetPost(existing.Post); err != nil {
		return err
	}

	if err := comment.Validate(); err != nil {
		return fmt.Errorf("invalid comment: %w", err)
	}

	comment.BeforeUpdate()
	return s.commentRepo.Update(ctx, comment)
}

// DeleteComment deletes a comment and returns it so callers can redirect
// to its post.
func (s *CommentService) DeleteComment(ctx context.Context, postID, id int) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, postID, id)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return comment, nil
}

package services

import (
	"context"
	"fmt"

	"askblog/app/models"
	"askblog/app/repositories"
)

// DefaultPerPage is the listing size when none is configured.
const DefaultPerPage = 10

// PostService handles business logic for blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// CreatePost creates a new blog post with validation
func (s *PostService) CreatePost(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	post.BeforeCreate()
	return s.postRepo.Create(ctx, post)
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	for _, comment := range comments {
		if err := post.AddComment(comment); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// ListPage retrieves one page of posts, newest first. rawPage is the
// unparsed ?page= value.
func (s *PostService) ListPage(ctx context.Context, rawPage string, perPage int) (*Page[*models.Post], error) {
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	count, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	pages := numPages(count, perPage)

	number, err := resolvePage(rawPage, pages)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx, perPage, (number-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &Page[*models.Post]{
		Items:    posts,
		Number:   number,
		NumPages: pages,
		Count:    count,
		PerPage:  perPage,
	}, nil
}

// AllPosts returns every post, newest first, without comments.
func (s *PostService) AllPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.All(ctx)
}

// UpdatePost updates an existing post with validation
func (s *PostService) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	existing, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}

	// Preserve creation time
	post.CreatedAt = existing.CreatedAt
	post.BeforeUpdate()
	return s.postRepo.Update(ctx, post)
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	return s.postRepo.Delete(ctx, id)
}

package services

import (
	"context"
	"fmt"

	"askblog/app/models"
	"askblog/app/repositories"
)

const recentLimit = 5

// Dashboard is the summary shown on the admin index.
type Dashboard struct {
	Users       int
	Posts       int
	Comments    int
	RecentPosts []*models.Post
	Accounts    []*models.User
}

// AdminService gathers site-wide figures for staff.
type AdminService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	userRepo    repositories.UserRepository
}

func NewAdminService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, userRepo repositories.UserRepository) *AdminService {
	return &AdminService{postRepo: postRepo, commentRepo: commentRepo, userRepo: userRepo}
}

// Dashboard collects counts, the latest posts and the account list.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	var err error

	if d.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if d.Posts, err = s.postRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	comments, err := s.commentRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	d.Comments = len(comments)

	if d.RecentPosts, err = s.postRepo.List(ctx, recentLimit, 0); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	if d.Accounts, err = s.userRepo.List(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &d, nil
}

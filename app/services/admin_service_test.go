package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"askblog/app/models"
	"askblog/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminServiceDashboard(t *testing.T) {
	ctx := context.Background()
	postRepo := mock.NewPostRepository()
	commentRepo := mock.NewCommentRepository()
	userRepo := mock.NewUserRepository()
	service := NewAdminService(postRepo, commentRepo, userRepo)

	for i := 1; i <= 7; i++ {
		require.NoError(t, postRepo.Create(ctx, &models.Post{Title: fmt.Sprintf("post %d", i), Content: "c"}))
	}
	require.NoError(t, commentRepo.Create(ctx, &models.Comment{PostID: 1, Author: "a", Content: "c"}))
	require.NoError(t, userRepo.Create(ctx, &models.User{Username: "root", IsStaff: true}))

	d, err := service.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Users)
	assert.Equal(t, 7, d.Posts)
	assert.Equal(t, 1, d.Comments)
	require.Len(t, d.RecentPosts, 5)
	assert.Equal(t, "post 7", d.RecentPosts[0].Title)
	require.Len(t, d.Accounts, 1)
}

func TestAdminServiceDashboardFailure(t *testing.T) {
	userRepo := mock.NewUserRepository()
	userRepo.Err = errors.New("unavailable")
	service := NewAdminService(mock.NewPostRepository(), mock.NewCommentRepository(), userRepo)

	_, err := service.Dashboard(context.Background())
	assert.ErrorIs(t, err, userRepo.Err)
}

package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"askblog/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentNew(t *testing.T) {
	app := setupTestApp(t)
	post := app.createPost(t, "Post", "text")

	t.Run("form page", func(t *testing.T) {
		w := app.get("/1/comments/new/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<html")
		assert.Contains(t, w.Body.String(), "New comment")
	})

	t.Run("ajax form partial", func(t *testing.T) {
		w := app.ajax(http.MethodGet, "/1/comments/new/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `class="comment-form"`)
		assert.NotContains(t, w.Body.String(), "data-invalid")
		assert.NotContains(t, w.Body.String(), "<html")
	})

	t.Run("valid redirects to the post", func(t *testing.T) {
		w := app.post("/1/comments/new/", url.Values{"author": {"alice"}, "content": {"Nice post"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, post.URL(), w.Header().Get("Location"))

		comments, err := app.commentRepo.ListByPost(context.Background(), post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "alice", comments[0].Author)
	})

	t.Run("ajax valid renders the comment", func(t *testing.T) {
		w := app.ajax(http.MethodPost, "/1/comments/new/", url.Values{"author": {"bob"}, "content": {"Agreed"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `class="comment"`)
		assert.Contains(t, w.Body.String(), "Agreed")
		assert.NotContains(t, w.Body.String(), "<html")
	})

	t.Run("invalid re-renders the form", func(t *testing.T) {
		w := app.post("/1/comments/new/", url.Values{"author": {""}, "content": {strings.Repeat("a", 501)}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")
		assert.Contains(t, w.Body.String(), "at most 500 characters")
	})

	t.Run("ajax invalid re-renders the partial", func(t *testing.T) {
		w := app.ajax(http.MethodPost, "/1/comments/new/", url.Values{"author": {"x"}, "content": {"   "}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `class="comment-form" data-invalid`)
		assert.Contains(t, w.Body.String(), "This field is required.")
		assert.NotContains(t, w.Body.String(), "<html")
	})

	t.Run("ajax valid comment mentioning the form class", func(t *testing.T) {
		w := app.ajax(http.MethodPost, "/1/comments/new/", url.Values{"author": {"x"}, "content": {"the comment-form is neat"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `class="comment"`)
		assert.NotContains(t, w.Body.String(), "data-invalid")
	})

	t.Run("missing post", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.get("/9/comments/new/").Code)
		w := app.post("/9/comments/new/", url.Values{"author": {"a"}, "content": {"b"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCommentEdit(t *testing.T) {
	app := setupTestApp(t)
	post := app.createPost(t, "Post", "text")
	other := app.createPost(t, "Other", "text")
	comment := app.createComment(t, post.ID, "alice", "Original")

	t.Run("form is filled in", func(t *testing.T) {
		w := app.get("/1/comments/1/edit/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Original")
		assert.Contains(t, w.Body.String(), `action="/1/comments/1/edit/"`)
	})

	t.Run("valid", func(t *testing.T) {
		w := app.post("/1/comments/1/edit/", url.Values{"author": {"alice"}, "content": {"Edited"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, post.URL(), w.Header().Get("Location"))

		got, err := app.comments.GetComment(context.Background(), post.ID, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edited", got.Content)
		assert.Equal(t, comment.CreatedAt, got.CreatedAt)
	})

	t.Run("ajax valid", func(t *testing.T) {
		w := app.ajax(http.MethodPost, "/1/comments/1/edit/", url.Values{"author": {"alice"}, "content": {"Again"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Again")
	})

	t.Run("invalid", func(t *testing.T) {
		w := app.post("/1/comments/1/edit/", url.Values{"author": {"alice"}, "content": {""}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")
	})

	t.Run("through another post", func(t *testing.T) {
		path := fmt.Sprintf("/%d/comments/%d/edit/", other.ID, comment.ID)
		assert.Equal(t, http.StatusNotFound, app.get(path).Code)
		assert.Equal(t, http.StatusNotFound, app.post(path, url.Values{"author": {"a"}, "content": {"b"}}).Code)
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.get("/1/comments/7/edit/").Code)
	})
}

func TestCommentDelete(t *testing.T) {
	app := setupTestApp(t)
	post := app.createPost(t, "Post", "text")
	comment := app.createComment(t, post.ID, "alice", "Remove me")

	w := app.get("/1/comments/1/delete/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Remove me")

	w = app.post("/1/comments/1/delete/", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))

	_, err := app.commentRepo.GetByID(context.Background(), comment.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, app.post("/1/comments/1/delete/", url.Values{}).Code)
}

package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminIndex(t *testing.T) {
	app := setupTestApp(t)
	_, err := app.accounts.CreateSuperuser(context.Background(), "root", "s3cret-pass")
	require.NoError(t, err)
	app.createPost(t, "Fresh post", "text")

	w := app.get("/admin/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "1 users")
	assert.Contains(t, body, "1 posts")
	assert.Contains(t, body, "Fresh post")
	assert.Contains(t, body, "<td>root</td>")
}

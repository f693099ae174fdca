package routes

import (
	"context"
	"net/http"
	"testing"

	"askblog/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSetupRoutesRequiresDeps(t *testing.T) {
	_, err := SetupRoutes(Deps{})
	assert.Error(t, err)
}

func TestStaticFiles(t *testing.T) {
	s := setupTestServer(t)

	w := s.request("GET", "/static/blog.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "background")

	assert.Equal(t, http.StatusNotFound, s.request("GET", "/static/missing.css", nil).Code)
}

func TestUnknownRoutes(t *testing.T) {
	s := setupTestServer(t)

	w := s.request("GET", "/no/such/page/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "404 Not Found")

	w = s.ajax("GET", "/no/such/page/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusMethodNotAllowed, s.request("DELETE", "/", nil).Code)
}

func TestTrailingSlashRedirect(t *testing.T) {
	s := setupTestServer(t)

	w := s.request("GET", "/new", nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/new/", w.Header().Get("Location"))
}

func TestAdminAccess(t *testing.T) {
	s := setupTestServer(t)

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := s.request("GET", "/admin/", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/accounts/login/?next=%2Fadmin%2F", w.Header().Get("Location"))
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		cookie := s.login(t, "regular")
		w := s.request("GET", "/admin/", nil, cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("staff sees the dashboard", func(t *testing.T) {
		accounts := services.NewAccountService(s.users, bcrypt.MinCost)
		_, err := accounts.CreateSuperuser(context.Background(), "boss", "s3cret-pass")
		require.NoError(t, err)

		w := s.request("POST", "/accounts/login/", loginForm("boss", "s3cret-pass"))
		require.Equal(t, http.StatusFound, w.Code)
		cookie := w.Result().Cookies()[0]

		w = s.request("GET", "/admin/", nil, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Administration")
		assert.Contains(t, w.Body.String(), "2 users")
	})
}

func TestSignupDuplicate(t *testing.T) {
	s := setupTestServer(t)
	s.login(t, "dave")

	_, err := s.users.GetByUsername(context.Background(), "DAVE")
	require.NoError(t, err)

	w := s.request("POST", "/accounts/signup/", signupForm("Dave"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	count, err := s.users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

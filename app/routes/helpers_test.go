package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"askblog/app/repositories"
	"askblog/app/session"
	"askblog/app/views"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler  http.Handler
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
}

func setupTestStatic(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.css"), []byte("body { background: #f0f0f0; }"), 0o644))
	return dir
}

// setupTestServer builds the full handler on an in-memory badger store.
func setupTestServer(t *testing.T) *testServer {
	db, err := repositories.OpenBadger("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions, err := session.NewManager([]byte(strings.Repeat("t", 32)), time.Hour, false)
	require.NoError(t, err)

	s := &testServer{
		posts:    repositories.NewBadgerPostRepository(db),
		comments: repositories.NewBadgerCommentRepository(db),
		users:    repositories.NewBadgerUserRepository(db),
	}
	s.handler, err = SetupRoutes(Deps{
		Posts:      s.posts,
		Comments:   s.comments,
		Users:      s.users,
		Sessions:   sessions,
		Views:      views.FS,
		StaticDir:  setupTestStatic(t),
		PageSize:   10,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return s
}

func (s *testServer) request(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) ajax(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// login signs up username and returns its session cookie.
func (s *testServer) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := s.request(http.MethodPost, "/accounts/signup/", signupForm(username))
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/accounts/login/", loginForm(username, "s3cret-pass"))
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func signupForm(username string) url.Values {
	return url.Values{"username": {username}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}}
}

func loginForm(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

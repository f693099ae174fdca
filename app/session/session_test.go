package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"askblog/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("s", 32))

func newTestManager(t *testing.T) *Manager {
	m, err := NewManager(testSecret, time.Hour, false)
	require.NoError(t, err)
	return m
}

// issue returns a request carrying the cookie produced for user.
func issue(t *testing.T, m *Manager, user *models.User) *http.Request {
	w := httptest.NewRecorder()
	_, err := m.Issue(w, user)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	return r
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	_, err := NewManager([]byte("short"), time.Hour, false)
	assert.Error(t, err)
}

func TestIssueAndCheck(t *testing.T) {
	m := newTestManager(t)
	r := issue(t, m, &models.User{ID: 7, Username: "alice", IsStaff: true})

	sess, err := m.Check(r)
	require.NoError(t, err)
	assert.Equal(t, 7, sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.True(t, sess.IsStaff)
	assert.NotEmpty(t, sess.ID)
}

func TestCheckRejects(t *testing.T) {
	m := newTestManager(t)

	t.Run("no cookie", func(t *testing.T) {
		_, err := m.Check(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})
		_, err := m.Check(r)
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewManager([]byte(strings.Repeat("x", 32)), time.Hour, false)
		require.NoError(t, err)
		r := issue(t, other, &models.User{ID: 1, Username: "eve"})
		_, err = m.Check(r)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		r := issue(t, m, &models.User{ID: 1, Username: "bob"})
		later := newTestManager(t)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Check(r)
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t)

	var got *Session
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got)

	handler.ServeHTTP(httptest.NewRecorder(), issue(t, m, &models.User{ID: 3, Username: "carol"}))
	require.NotNil(t, got)
	assert.Equal(t, "carol", got.Username)
}

func TestClear(t *testing.T) {
	w := httptest.NewRecorder()
	newTestManager(t).Clear(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

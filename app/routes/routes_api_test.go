package routes

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoutes(t *testing.T) {
	s := setupTestServer(t)
	for _, title := range []string{"첫 번째 글", "Second"} {
		w := s.request("POST", "/new/", url.Values{"title": {title}, "content": {"본문 text"}})
		require.Equal(t, http.StatusFound, w.Code)
	}

	t.Run("GET /posts.json", func(t *testing.T) {
		w := s.request("GET", "/posts.json", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "첫 번째 글")

		var posts []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
		require.Len(t, posts, 2)
		assert.Equal(t, "Second", posts[0]["title"])
		assert.Contains(t, posts[0], "created_at")
	})

	t.Run("ajax detail", func(t *testing.T) {
		w := s.ajax("GET", "/1/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"title":"첫 번째 글","summary":"본문 text"}`, w.Body.String())
	})

	t.Run("ajax missing detail", func(t *testing.T) {
		w := s.ajax("GET", "/9/", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"error"`)
	})

	t.Run("chart data", func(t *testing.T) {
		w := s.request("GET", "/mychart/data/", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var days []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
		require.Len(t, days, 1)
		assert.EqualValues(t, 2, days[0]["posts"])
	})
}

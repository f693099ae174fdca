package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"askblog/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChart(t *testing.T) {
	app := setupTestApp(t)

	w := app.get("/mychart/data/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	post := app.createPost(t, "Post", "text")
	app.createComment(t, post.ID, "a", "one")
	app.createComment(t, post.ID, "b", "two")

	w = app.get("/mychart/data/")
	assert.Equal(t, http.StatusOK, w.Code)

	var days []services.DayActivity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
	require.Len(t, days, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), days[0].Day)
	assert.Equal(t, 1, days[0].Posts)
	assert.Equal(t, 2, days[0].Comments)

	w = app.get("/mychart/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), days[0].Day)
}

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"askblog/app/models"
	"askblog/app/repositories/mock"
	"askblog/app/services"
	"askblog/app/session"
	"askblog/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	handler     http.Handler
	posts       *services.PostService
	comments    *services.CommentService
	accounts    *services.AccountService
	postRepo    *mock.PostRepository
	commentRepo *mock.CommentRepository
	sessions    *session.Manager
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	postRepo, commentRepo := mock.NewRepositories()
	userRepo := mock.NewUserRepository()

	render, err := NewRenderer(views.FS, nil)
	require.NoError(t, err)
	sessions, err := session.NewManager([]byte(strings.Repeat("k", 32)), time.Hour, false)
	require.NoError(t, err)

	app := &testApp{
		posts:       services.NewPostService(postRepo, commentRepo),
		comments:    services.NewCommentService(commentRepo, postRepo),
		accounts:    services.NewAccountService(userRepo, bcrypt.MinCost),
		postRepo:    postRepo,
		commentRepo: commentRepo,
		sessions:    sessions,
	}

	pc := NewPostController(app.posts, render, 10)
	cc := NewCommentController(app.comments, render)
	ac := NewAccountController(app.accounts, sessions, render)
	chart := NewChartController(services.NewChartService(postRepo, commentRepo), render)
	admin := NewAdminController(services.NewAdminService(postRepo, commentRepo, userRepo), render)

	router := mux.NewRouter()
	router.HandleFunc("/", pc.Index).Methods("GET")
	router.HandleFunc("/new/", pc.New).Methods("GET", "POST")
	router.HandleFunc("/posts.json", pc.ListJSON).Methods("GET")
	router.HandleFunc("/{pk:[0-9]+}/", pc.Show).Methods("GET")
	router.HandleFunc("/{pk:[0-9]+}/edit/", pc.Edit).Methods("GET", "POST")
	router.HandleFunc("/{pk:[0-9]+}/delete/", pc.Delete).Methods("GET", "POST")
	router.HandleFunc("/{post_pk:[0-9]+}/comments/new/", cc.New).Methods("GET", "POST")
	router.HandleFunc("/{post_pk:[0-9]+}/comments/{pk:[0-9]+}/edit/", cc.Edit).Methods("GET", "POST")
	router.HandleFunc("/{post_pk:[0-9]+}/comments/{pk:[0-9]+}/delete/", cc.Delete).Methods("GET", "POST")
	router.HandleFunc("/accounts/signup/", ac.Signup).Methods("GET", "POST")
	router.HandleFunc("/accounts/login/", ac.Login).Methods("GET", "POST")
	router.HandleFunc("/accounts/logout/", ac.Logout).Methods("GET", "POST")
	router.HandleFunc("/mychart/", chart.Index).Methods("GET")
	router.HandleFunc("/mychart/data/", chart.Data).Methods("GET")
	router.HandleFunc("/admin/", admin.Index).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(render.NotFound)

	app.handler = sessions.Middleware(router)
	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) ajax(method, path string, form url.Values) *httptest.ResponseRecorder {
	req := newFormRequest(method, path, form)
	req.Header.Set(ajaxHeader, ajaxHeaderVal)
	return a.do(req)
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	return a.do(newFormRequest(http.MethodPost, path, form))
}

func newFormRequest(method, path string, form url.Values) *http.Request {
	if form == nil {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (a *testApp) createPost(t *testing.T, title, content string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Content: content}
	require.NoError(t, a.posts.CreatePost(context.Background(), post))
	return post
}

func (a *testApp) createComment(t *testing.T, postID int, author, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Author: author, Content: content}
	require.NoError(t, a.comments.CreateComment(context.Background(), postID, comment))
	return comment
}

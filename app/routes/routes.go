package routes

import (
	"errors"
	"io/fs"
	"net/http"

	"askblog/app/controllers"
	"askblog/app/middleware"
	"askblog/app/repositories"
	"askblog/app/services"
	"askblog/app/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps carries what the routes are built from.
type Deps struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Users    repositories.UserRepository
	Sessions *session.Manager
	Logger   *zap.Logger

	// Views holds the templates, usually views.FS.
	Views     fs.FS
	StaticDir string
	PageSize  int
	// BcryptCost of zero selects the bcrypt default.
	BcryptCost int
}

// SetupRoutes wires services and controllers and returns the application
// handler. Logging, panic recovery and session loading wrap the router so
// they also apply to unmatched paths.
func SetupRoutes(d Deps) (http.Handler, error) {
	if d.Posts == nil || d.Comments == nil || d.Users == nil || d.Sessions == nil || d.Views == nil {
		return nil, errors.New("routes: repositories, sessions and views are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	render, err := controllers.NewRenderer(d.Views, logger)
	if err != nil {
		return nil, err
	}

	postService := services.NewPostService(d.Posts, d.Comments)
	commentService := services.NewCommentService(d.Comments, d.Posts)
	accountService := services.NewAccountService(d.Users, d.BcryptCost)

	postController := controllers.NewPostController(postService, render, d.PageSize)
	commentController := controllers.NewCommentController(commentService, render)
	accountController := controllers.NewAccountController(accountService, d.Sessions, render)
	chartController := controllers.NewChartController(services.NewChartService(d.Posts, d.Comments), render)
	adminController := controllers.NewAdminController(services.NewAdminService(d.Posts, d.Comments, d.Users), render)

	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(render.NotFound)

	if d.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))
	}

	// Blog
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/new/", postController.New).Methods("GET", "POST")
	router.HandleFunc("/posts.json", postController.ListJSON).Methods("GET")
	router.HandleFunc("/{pk:[0-9]+}/", postController.Show).Methods("GET")
	router.HandleFunc("/{pk:[0-9]+}/edit/", postController.Edit).Methods("GET", "POST")
	router.HandleFunc("/{pk:[0-9]+}/delete/", postController.Delete).Methods("GET", "POST")

	comments := router.PathPrefix("/{post_pk:[0-9]+}/comments").Subrouter()
	comments.HandleFunc("/new/", commentController.New).Methods("GET", "POST")
	comments.HandleFunc("/{pk:[0-9]+}/edit/", commentController.Edit).Methods("GET", "POST")
	comments.HandleFunc("/{pk:[0-9]+}/delete/", commentController.Delete).Methods("GET", "POST")

	// Accounts
	accounts := router.PathPrefix("/accounts").Subrouter()
	accounts.HandleFunc("/signup/", accountController.Signup).Methods("GET", "POST")
	accounts.HandleFunc("/login/", accountController.Login).Methods("GET", "POST")
	accounts.HandleFunc("/logout/", accountController.Logout).Methods("GET", "POST")

	// Chart
	router.HandleFunc("/mychart/", chartController.Index).Methods("GET")
	router.HandleFunc("/mychart/data/", chartController.Data).Methods("GET")

	// Admin, staff only
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireStaff)
	admin.HandleFunc("/", adminController.Index).Methods("GET")

	var handler http.Handler = router
	handler = d.Sessions.Middleware(handler)
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.Logger(logger)(handler)
	return handler, nil
}

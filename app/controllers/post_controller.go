package controllers

import (
	"errors"
	"net/http"
	"strings"

	"askblog/app/models"
	"askblog/app/services"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	render      *Renderer
	perPage     int
}

// NewPostController creates a new PostController listing perPage posts per page.
func NewPostController(postService *services.PostService, render *Renderer, perPage int) *PostController {
	if perPage < 1 {
		perPage = services.DefaultPerPage
	}
	return &PostController{postService: postService, render: render, perPage: perPage}
}

type postForm struct {
	Post   *models.Post
	Errors models.FieldErrors
}

type postDetail struct {
	Post        *models.Post
	CommentForm commentForm
}

// detailSummary is the AJAX variant of the detail page.
type detailSummary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Index handles listing posts, one page at a time
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.postService.ListPage(r.Context(), r.URL.Query().Get("page"), pc.perPage)
	if errors.Is(err, services.ErrInvalidPage) {
		pc.render.Error(w, r, http.StatusNotFound, "Invalid page.")
		return
	}
	if err != nil {
		pc.render.ServerError(w, r, err)
		return
	}

	if isAjax(r) {
		pc.render.Partial(w, r, http.StatusOK, "_post_list.html", page)
		return
	}
	pc.render.Page(w, r, http.StatusOK, "blog/index.html", page)
}

// Show handles displaying a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "pk")
	if err != nil {
		pc.render.Fail(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.render.Fail(w, r, err)
		return
	}

	if isAjax(r) {
		pc.render.JSON(w, http.StatusOK, detailSummary{Title: post.Title, Summary: post.Summary()})
		return
	}
	pc.render.Page(w, r, http.StatusOK, "blog/post_detail.html", postDetail{
		Post:        post,
		CommentForm: commentForm{Action: post.URL() + "comments/new/", Comment: &models.Comment{}},
	})
}

// New shows the post form and creates the post on submit
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		pc.render.Page(w, r, http.StatusOK, "blog/post_form.html", postForm{Post: &models.Post{}})
		return
	}

	post, err := readPost(r)
	if err != nil {
		pc.render.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	if err := pc.postService.CreatePost(r.Context(), post); err != nil {
		if fe, ok := formErrors(err); ok {
			pc.render.Page(w, r, http.StatusOK, "blog/post_form.html", postForm{Post: post, Errors: fe})
			return
		}
		pc.render.ServerError(w, r, err)
		return
	}
	http.Redirect(w, r, post.URL(), http.StatusFound)
}

// Edit shows the filled in post form and saves the changes on submit
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "pk")
	if err != nil {
		pc.render.Fail(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		post, err := pc.postService.GetPost(r.Context(), id)
		if err != nil {
			pc.render.Fail(w, r, err)
			return
		}
		pc.render.Page(w, r, http.StatusOK, "blog/post_form.html", postForm{Post: post})
		return
	}

	post, err := readPost(r)
	if err != nil {
		pc.render.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	post.ID = id

	if err := pc.postService.UpdatePost(r.Context(), post); err != nil {
		if fe, ok := formErrors(err); ok {
			pc.render.Page(w, r, http.StatusOK, "blog/post_form.html", postForm{Post: post, Errors: fe})
			return
		}
		pc.render.Fail(w, r, err)
		return
	}
	http.Redirect(w, r, post.URL(), http.StatusFound)
}

// Delete asks for confirmation and deletes the post with its comments on submit
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "pk")
	if err != nil {
		pc.render.Fail(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		post, err := pc.postService.GetPost(r.Context(), id)
		if err != nil {
			pc.render.Fail(w, r, err)
			return
		}
		pc.render.Page(w, r, http.StatusOK, "blog/post_confirm_delete.html", post)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		pc.render.Fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ListJSON serves every post as a JSON array
func (pc *PostController) ListJSON(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.AllPosts(r.Context())
	if err != nil {
		pc.render.ServerError(w, r, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	pc.render.JSON(w, http.StatusOK, posts)
}

func readPost(r *http.Request) (*models.Post, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &models.Post{
		Title:   r.PostForm.Get("title"),
		Content: strings.ReplaceAll(r.PostForm.Get("content"), "\r\n", "\n"),
	}, nil
}

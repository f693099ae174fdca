package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"askblog/app/models"
	"askblog/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
	render         *Renderer
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, render *Renderer) *CommentController {
	return &CommentController{commentService: commentService, render: render}
}

type commentForm struct {
	Action  string
	Comment *models.Comment
	Errors  models.FieldErrors
}

// New shows the comment form and adds the comment to the post on submit
func (cc *CommentController) New(w http.ResponseWriter, r *http.Request) {
	postID, err := pathInt(r, "post_pk")
	if err != nil {
		cc.render.Fail(w, r, err)
		return
	}

	post, err := cc.commentService.GetPost(r.Context(), postID)
	if err != nil {
		cc.render.Fail(w, r, err)
		return
	}
	form := commentForm{Action: post.URL() + "comments/new/", Comment: &models.Comment{}}

	if r.Method != http.MethodPost {
		cc.showForm(w, r, http.StatusOK, form)
		return
	}

	if form.Comment, err = readComment(r); err != nil {
		cc.render.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	if err := cc.commentService.CreateComment(r.Context(), postID, form.Comment); err != nil {
		cc.fail(w, r, form, err)
		return
	}
	cc.saved(w, r, form.Comment)
}

// Edit shows the filled in comment form and saves the changes on submit
func (cc *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		cc.render.Fail(w, r, err)
		return
	}

	comment, err := cc.commentService.GetComment(r.Context(), postID, id)
	if err != nil {
		cc.render.Fail(w, r, err)
		return
	}
	form := commentForm{Action: fmt.Sprintf("%scomments/%d/edit/", comment.URL(), id), Comment: comment}

	if r.Method != http.MethodPost {
		cc.showForm(w, r, http.StatusOK, form)
		return
	}

	if form.Comment, err = readComment(r); err != nil {
		cc.render.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	form.Comment.ID = id
	if err := cc.commentService.UpdateComment(r.Context(), postID, form.Comment); err != nil {
		cc.fail(w, r, form, err)
		return
	}
	cc.saved(w, r, form.Comment)
}

// Delete asks for confirmation and removes the comment on submit
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		cc.render.Fail(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		comment, err := cc.commentService.GetComment(r.Context(), postID, id)
		if err != nil {
			cc.render.Fail(w, r, err)
			return
		}
		cc.render.Page(w, r, http.StatusOK, "blog/comment_confirm_delete.html", comment)
		return
	}

	comment, err := cc.commentService.DeleteComment(r.Context(), postID, id)
	if err != nil {
		cc.render.Fail(w, r, err)
		return
	}
	http.Redirect(w, r, comment.URL(), http.StatusFound)
}

func (cc *CommentController) showForm(w http.ResponseWriter, r *http.Request, status int, form commentForm) {
	if isAjax(r) {
		cc.render.Partial(w, r, status, "_comment_form.html", form)
		return
	}
	cc.render.Page(w, r, status, "blog/comment_form.html", form)
}

// fail re-renders the form for validation errors and maps everything else.
// Scripts get 422 so they can tell a rejected form from a saved comment.
func (cc *CommentController) fail(w http.ResponseWriter, r *http.Request, form commentForm, err error) {
	if fe, ok := formErrors(err); ok {
		form.Errors = fe
		status := http.StatusOK
		if isAjax(r) {
			status = http.StatusUnprocessableEntity
		}
		cc.showForm(w, r, status, form)
		return
	}
	cc.render.Fail(w, r, err)
}

// saved answers a successful submit: the rendered comment for scripts, a
// redirect to the post otherwise.
func (cc *CommentController) saved(w http.ResponseWriter, r *http.Request, comment *models.Comment) {
	if isAjax(r) {
		cc.render.Partial(w, r, http.StatusOK, "_comment.html", comment)
		return
	}
	http.Redirect(w, r, comment.URL(), http.StatusFound)
}

func commentIDs(r *http.Request) (postID, id int, err error) {
	if postID, err = pathInt(r, "post_pk"); err != nil {
		return 0, 0, err
	}
	if id, err = pathInt(r, "pk"); err != nil {
		return 0, 0, err
	}
	return postID, id, nil
}

func readComment(r *http.Request) (*models.Comment, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &models.Comment{
		Author:  r.PostForm.Get("author"),
		Content: strings.ReplaceAll(r.PostForm.Get("content"), "\r\n", "\n"),
	}, nil
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"askblog/app/models"
	"askblog/app/services"
	"askblog/app/session"
)

// LoginURL is where a successful signup sends the new user.
const LoginURL = "/accounts/login/"

const badLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// AccountController handles signup, login and logout.
type AccountController struct {
	accounts *services.AccountService
	sessions *session.Manager
	render   *Renderer
}

func NewAccountController(accounts *services.AccountService, sessions *session.Manager, render *Renderer) *AccountController {
	return &AccountController{accounts: accounts, sessions: sessions, render: render}
}

type signupView struct {
	Username string
	Errors   models.FieldErrors
}

type loginView struct {
	Username string
	Next     string
	Errors   models.FieldErrors
}

// Signup registers a new account and sends the user to the login page.
func (ac *AccountController) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render.Page(w, r, http.StatusOK, "accounts/signup_form.html", signupView{})
		return
	}
	if err := r.ParseForm(); err != nil {
		ac.render.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	form := services.SignupForm{
		Username:  r.PostForm.Get("username"),
		Password1: r.PostForm.Get("password1"),
		Password2: r.PostForm.Get("password2"),
	}
	if _, err := ac.accounts.Signup(r.Context(), form); err != nil {
		if fe, ok := formErrors(err); ok {
			ac.render.Page(w, r, http.StatusOK, "accounts/signup_form.html", signupView{Username: form.Username, Errors: fe})
			return
		}
		ac.render.ServerError(w, r, err)
		return
	}
	http.Redirect(w, r, LoginURL, http.StatusFound)
}

// Login checks the credentials and starts a session.
func (ac *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render.Page(w, r, http.StatusOK, "accounts/login.html", loginView{Next: r.URL.Query().Get("next")})
		return
	}
	if err := r.ParseForm(); err != nil {
		ac.render.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	username := r.PostForm.Get("username")
	next := r.PostForm.Get("next")
	user, err := ac.accounts.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		ac.render.Page(w, r, http.StatusOK, "accounts/login.html", loginView{
			Username: username,
			Next:     next,
			Errors:   models.FieldErrors{"": badLogin},
		})
		return
	}
	if err != nil {
		ac.render.ServerError(w, r, err)
		return
	}

	if _, err := ac.sessions.Issue(w, user); err != nil {
		ac.render.ServerError(w, r, err)
		return
	}
	http.Redirect(w, r, safeRedirect(next), http.StatusFound)
}

// Logout ends the session.
func (ac *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeRedirect only allows paths on this site.
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

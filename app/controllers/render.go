package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"askblog/app/models"
	"askblog/app/repositories"
	"askblog/app/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	layoutFile    = "layout.html"
	errorPage     = "errors/error.html"
	jsonUTF8      = "application/json; charset=utf-8"
	ajaxHeader    = "X-Requested-With"
	ajaxHeaderVal = "XMLHttpRequest"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}

// view is what every full page receives. Data is the page specific value.
type view struct {
	User *session.Session
	Data any
}

type errorView struct {
	Status  int
	Text    string
	Message string
}

// Renderer turns templates and values into responses.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	logger   *zap.Logger
}

// NewRenderer parses every page of fsys together with the layout and the
// partials. Pages are keyed by their path, e.g. "blog/index.html".
func NewRenderer(fsys fs.FS, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := fs.Glob(fsys, "*/*.html")
	if err != nil {
		return nil, err
	}

	var partials, pages []string
	for _, f := range files {
		if strings.HasPrefix(path.Base(f), "_") {
			partials = append(partials, f)
		} else {
			pages = append(pages, f)
		}
	}

	rd := &Renderer{pages: make(map[string]*template.Template), logger: logger}
	if len(partials) > 0 {
		rd.partials, err = template.New("partials").Funcs(templateFuncs).ParseFS(fsys, partials...)
		if err != nil {
			return nil, fmt.Errorf("parse partials: %w", err)
		}
	}
	for _, page := range pages {
		patterns := append([]string{layoutFile, page}, partials...)
		t, err := template.New(path.Base(page)).Funcs(templateFuncs).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		rd.pages[page] = t
	}
	if _, ok := rd.pages[errorPage]; !ok {
		return nil, fmt.Errorf("missing template %s", errorPage)
	}
	return rd, nil
}

// isAjax reports whether the request was sent by a script.
func isAjax(r *http.Request) bool {
	return r.Header.Get(ajaxHeader) == ajaxHeaderVal
}

// Page renders the page name inside the layout.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := rd.pages[name]
	if !ok {
		rd.ServerError(w, r, fmt.Errorf("unknown page %q", name))
		return
	}
	sess, _ := session.CurrentUser(r.Context())
	rd.write(w, r, status, t, "layout", view{User: sess, Data: data})
}

// Partial renders a single fragment, for AJAX responses.
func (rd *Renderer) Partial(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if rd.partials == nil || rd.partials.Lookup(name) == nil {
		rd.ServerError(w, r, fmt.Errorf("unknown partial %q", name))
		return
	}
	rd.write(w, r, status, rd.partials, name, data)
}

func (rd *Renderer) write(w http.ResponseWriter, r *http.Request, status int, t *template.Template, name string, data any) {
	// Render to a buffer first so a failing template still yields a clean 500.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		rd.ServerError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// JSON writes data as UTF-8 JSON without escaping HTML or non-ASCII text.
func (rd *Renderer) JSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		rd.logger.Error("encode json", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", jsonUTF8)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error answers with an error page, or a JSON body for AJAX requests.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isAjax(r) {
		rd.JSON(w, status, map[string]string{"error": message})
		return
	}

	var buf bytes.Buffer
	sess, _ := session.CurrentUser(r.Context())
	data := view{User: sess, Data: errorView{Status: status, Text: http.StatusText(status), Message: message}}
	if err := rd.pages[errorPage].ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("render error page", zap.Error(err))
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound is the handler for unknown routes.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Error(w, r, http.StatusNotFound, "The requested page does not exist.")
}

// ServerError logs err and answers 500.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rd.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	rd.Error(w, r, http.StatusInternalServerError, "Something went wrong.")
}

// Fail maps a service error to a response: missing objects become 404,
// everything else 500.
func (rd *Renderer) Fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		rd.NotFound(w, r)
		return
	}
	rd.ServerError(w, r, err)
}

// pathInt reads a numeric route variable. Routes only match digits, so an
// error here means an id too large to exist.
func pathInt(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", repositories.ErrNotFound, name, mux.Vars(r)[name])
	}
	return id, nil
}

// formErrors extracts validation failures from err.
func formErrors(err error) (models.FieldErrors, bool) {
	var fe models.FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

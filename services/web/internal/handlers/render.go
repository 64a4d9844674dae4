package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home", "login", "cabins", "cabin", "thankyou",
	"account", "profile", "reservations", "edit", "error",
}

type templates struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Mon, Jan 02 2006") },
	"isoDate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}

func mustParseTemplates() *templates {
	t := &templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t.pages[name] = template.Must(template.New(name).Funcs(templateFuncs).ParseFS(
			templateFS, "templates/layout.html", "templates/"+name+".html",
		))
	}
	return t
}

// pageData is what every template receives.
type pageData struct {
	Title   string
	Session *domain.Session
	Flash   *Flash
	Data    any
}

func (t *templates) render(name string, data pageData) ([]byte, error) {
	tmpl, ok := t.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// cacheScope keys a render by viewer and query string.
func cacheScope(sess *domain.Session, r *http.Request) string {
	scope := "anon"
	if sess != nil {
		scope = strconv.FormatInt(sess.GuestID, 10)
	}
	if r.URL.RawQuery != "" {
		scope += "?" + r.URL.RawQuery
	}
	return scope
}

type loader func(ctx context.Context, sess *domain.Session) (any, error)

// page serves a rendered template, reusing the cached render of the path
// when one exists. Renders carrying a flash are never cached.
func (h *Handlers) page(w http.ResponseWriter, r *http.Request, name, title string, load loader) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	flash := GetFlash(ctx)
	path := r.URL.Path
	scope := cacheScope(sess, r)

	if flash == nil && h.pages != nil {
		body, ok, err := h.pages.Get(ctx, path, scope)
		if err != nil {
			logger.WarnContext(ctx, "View cache read failed", "path", path, "error", err)
		} else if ok {
			writeHTML(w, http.StatusOK, body, "hit")
			return
		}
	}

	data, err := load(ctx, sess)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	body, err := h.views.render(name, pageData{Title: title, Session: sess, Flash: flash, Data: data})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render page", "page", name, "error", err)
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	if flash == nil && h.pages != nil {
		if err := h.pages.Put(ctx, path, scope, body); err != nil {
			logger.WarnContext(ctx, "View cache write failed", "path", path, "error", err)
		}
	}
	writeHTML(w, http.StatusOK, body, "miss")
}

func (h *Handlers) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	body, err := h.views.render("error", pageData{
		Title:   http.StatusText(status),
		Session: session.FromContext(r.Context()),
		Data:    message,
	})
	if err != nil {
		http.Error(w, message, status)
		return
	}
	writeHTML(w, status, body, "")
}

func writeHTML(w http.ResponseWriter, status int, body []byte, cache string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if cache != "" {
		w.Header().Set("X-View-Cache", cache)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

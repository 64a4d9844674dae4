package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
)

const (
	defaultProvider = "google"
	afterSignIn     = "/account"
	afterSignOut    = "/"
)

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	provider := defaultProvider
	if err := r.ParseForm(); err == nil && r.PostForm.Get("provider") != "" {
		provider = r.PostForm.Get("provider")
	}

	if err := h.sessions.SignIn(w, r, provider, afterSignIn); err != nil {
		logger.WarnContext(r.Context(), "Sign-in could not start", "provider", provider, "error", err)
		SetFlash(w, "error", "That sign-in method is not available")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	next, err := h.sessions.Callback(w, r, chi.URLParam(r, "provider"))
	if err != nil {
		logger.WarnContext(r.Context(), "Sign-in failed", "error", err)
		msg := "Sign-in failed. Please try again."
		if errors.Is(err, session.ErrStateMismatch) {
			msg = "Your sign-in session expired. Please try again."
		}
		SetFlash(w, "error", msg)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w, r, afterSignOut)
}

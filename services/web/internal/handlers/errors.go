package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/pkg/response"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// userMessage strips the error kind prefix added by the domain wrappers.
func userMessage(err error, kind error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, kind.Error()+": "); ok {
		return rest
	}
	return msg
}

// fail maps an error kind to a response. back is where an invalid form
// submission returns to; it is empty for page loads.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	ctx := r.Context()

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		if wantsJSON(r) {
			response.Unauthorized(w, "Sign in required")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)

	case errors.Is(err, domain.ErrInvalidInput):
		msg := userMessage(err, domain.ErrInvalidInput)
		if wantsJSON(r) {
			response.BadRequest(w, msg)
			return
		}
		if back == "" {
			h.errorPage(w, r, http.StatusBadRequest, msg)
			return
		}
		SetFlash(w, "error", msg)
		http.Redirect(w, r, back, http.StatusSeeOther)

	case errors.Is(err, domain.ErrUnauthorizedMutation):
		logger.WarnContext(ctx, "Rejected booking mutation", "path", r.URL.Path)
		response.Forbidden(w, "You are not allowed to modify this booking")

	case errors.Is(err, domain.ErrNotFound):
		if wantsJSON(r) {
			response.NotFound(w, "Not found")
			return
		}
		h.errorPage(w, r, http.StatusNotFound, "We could not find what you were looking for.")

	case errors.Is(err, domain.ErrPersistence):
		logger.ErrorContext(ctx, "Persistence failure", "path", r.URL.Path, "error", err)
		response.PersistenceError(w, "Your change could not be saved")

	default:
		logger.ErrorContext(ctx, "Request failed", "path", r.URL.Path, "error", err)
		if wantsJSON(r) {
			response.InternalError(w, "Internal server error")
			return
		}
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
	}
}

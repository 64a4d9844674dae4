package session

import (
	"context"
	"net/http"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// FromContext returns the session loaded by Load, or nil.
func FromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionCtxKey).(*domain.Session)
	return sess
}

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey, sess)
	if sess != nil {
		ctx = context.WithValue(ctx, logger.GuestIDKey, sess.GuestID)
	}
	return ctx
}

// Load attaches the request's session, if any, to its context.
func (p *Provider) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := p.Auth(r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Require redirects anonymous visitors to the login page.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const flashCookieName = "flash"

type flashKey struct{}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type    string
	Message string
}

func GetFlash(ctx context.Context) *Flash {
	flash, _ := ctx.Value(flashKey{}).(*Flash)
	return flash
}

// SetFlash queues a message for the next request.
func SetFlash(w http.ResponseWriter, flashType, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(flashType + ":" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoadFlash reads and clears the flash cookie.
func LoadFlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var flash *Flash

		if cookie, err := r.Cookie(flashCookieName); err == nil && cookie.Value != "" {
			flash = parseFlash(cookie.Value)
			http.SetCookie(w, &http.Cookie{
				Name:     flashCookieName,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				Expires:  time.Unix(0, 0),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), flashKey{}, flash)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseFlash(raw string) *Flash {
	value, err := url.QueryUnescape(raw)
	if err != nil {
		value = raw
	}
	kind, message, ok := strings.Cut(value, ":")
	if !ok {
		return &Flash{Type: "info", Message: value}
	}
	return &Flash{Type: kind, Message: message}
}

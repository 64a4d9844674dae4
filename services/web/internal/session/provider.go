package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/zenith-cabins/pkg/auth"
	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/pkg/utils"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

const (
	CookieName     = "zenith_session"
	stateCookie    = "zenith_oauth_state"
	nextCookie     = "zenith_oauth_next"
	stateCookieTTL = 10 * time.Minute
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrStateMismatch   = errors.New("oauth state mismatch")
)

// Identity is what an external identity provider vouches for.
type Identity struct {
	Email string
	Name  string
}

type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*Identity, error)
}

// GuestDirectory finds or registers the guest behind an identity.
type GuestDirectory interface {
	GetByEmail(ctx context.Context, email string) (*domain.Guest, error)
	Create(ctx context.Context, fullName, email string) (*domain.Guest, error)
}

type Config struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

type Provider struct {
	config    Config
	guests    GuestDirectory
	providers map[string]IdentityProvider
}

func NewProvider(config Config, guests GuestDirectory, providers map[string]IdentityProvider) *Provider {
	return &Provider{
		config:    config,
		guests:    guests,
		providers: providers,
	}
}

// Auth returns the session carried by the request, or nil when anonymous.
func (p *Provider) Auth(r *http.Request) *domain.Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.Parse(cookie.Value, p.config.Secret)
	if err != nil {
		logger.DebugContext(r.Context(), "Ignoring invalid session cookie", "error", err)
		return nil
	}
	return &domain.Session{
		GuestID: claims.GuestID,
		Name:    claims.Name,
		Email:   claims.Email,
	}
}

// SignIn starts the named provider's flow. After the callback the browser is
// sent to redirectTo.
func (p *Provider) SignIn(w http.ResponseWriter, r *http.Request, provider, redirectTo string) error {
	idp, ok := p.providers[provider]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	state := uuid.NewString()
	p.setCookie(w, stateCookie, state, stateCookieTTL)
	p.setCookie(w, nextCookie, safeRedirect(redirectTo), stateCookieTTL)

	http.Redirect(w, r, idp.AuthCodeURL(state), http.StatusSeeOther)
	return nil
}

// Callback completes the provider flow, finds or creates the guest and issues
// the session cookie. It returns where the browser should go next.
func (p *Provider) Callback(w http.ResponseWriter, r *http.Request, provider string) (string, error) {
	idp, ok := p.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	if e := r.URL.Query().Get("error"); e != "" {
		return "", fmt.Errorf("identity provider refused sign-in: %s", e)
	}

	stateCk, err := r.Cookie(stateCookie)
	if err != nil || stateCk.Value == "" || stateCk.Value != r.URL.Query().Get("state") {
		return "", ErrStateMismatch
	}
	next := "/"
	if ck, err := r.Cookie(nextCookie); err == nil {
		next = safeRedirect(ck.Value)
	}
	p.clearCookie(w, stateCookie)
	p.clearCookie(w, nextCookie)

	identity, err := idp.Identify(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return "", fmt.Errorf("failed to identify user: %w", err)
	}

	guest, err := p.findOrCreateGuest(r.Context(), identity)
	if err != nil {
		return "", err
	}
	if err := p.Issue(w, guest); err != nil {
		return "", err
	}

	logger.InfoContext(r.Context(), "Guest signed in", "guest_id", guest.ID, "provider", provider)
	return next, nil
}

func (p *Provider) findOrCreateGuest(ctx context.Context, identity *Identity) (*domain.Guest, error) {
	email := utils.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.New("identity has no email")
	}

	guest, err := p.guests.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest: %w", err)
	}
	if guest != nil {
		return guest, nil
	}

	guest, err = p.guests.Create(ctx, identity.Name, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return guest, nil
}

// Issue writes a session cookie for guest.
func (p *Provider) Issue(w http.ResponseWriter, guest *domain.Guest) error {
	token, err := auth.NewSessionToken(guest.ID, guest.FullName, guest.Email, p.config.Secret, p.config.TTL)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	p.setCookie(w, CookieName, token, p.config.TTL)
	return nil
}

// SignOut clears the session and redirects to redirectTo.
func (p *Provider) SignOut(w http.ResponseWriter, r *http.Request, redirectTo string) {
	p.clearCookie(w, CookieName)
	http.Redirect(w, r, safeRedirect(redirectTo), http.StatusSeeOther)
}

func (p *Provider) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p *Provider) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   p.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirect only allows local absolute paths.
func safeRedirect(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}

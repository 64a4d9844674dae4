package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	mw "github.com/diagnosis/zenith-cabins/pkg/middleware"
	"github.com/diagnosis/zenith-cabins/services/web/internal/actions"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/handlers"
	"github.com/diagnosis/zenith-cabins/services/web/internal/service"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
	"github.com/diagnosis/zenith-cabins/services/web/internal/views"
)

// memBookings backs the booking and cabin reads and the booking writes.
type memBookings struct {
	mu         sync.Mutex
	cabins     []domain.Cabin
	bookings   []domain.Booking
	nextID     int64
	failWrites bool
}

func (m *memBookings) GetBookings(_ context.Context, guestID int64) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) GetBooking(_ context.Context, id int64) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBookings) GetBookedDatesByCabinID(context.Context, int64) ([]time.Time, error) {
	return nil, nil
}

func (m *memBookings) ListCabins(_ context.Context, filter domain.CapacityFilter) ([]domain.Cabin, error) {
	var out []domain.Cabin
	for _, c := range m.cabins {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memBookings) GetCabin(_ context.Context, id int64) (*domain.Cabin, error) {
	for _, c := range m.cabins {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBookings) GetSettings(context.Context) (*domain.Settings, error) {
	return &domain.Settings{MinBookingLength: 2, MaxBookingLength: 30, MaxGuestsPerBooking: 8}, nil
}

func (m *memBookings) LoadReservationData(ctx context.Context, cabinID int64) (*service.ReservationData, error) {
	cabin, err := m.GetCabin(ctx, cabinID)
	if err != nil {
		return nil, err
	}
	settings, _ := m.GetSettings(ctx)
	return &service.ReservationData{Cabin: cabin, Settings: settings}, nil
}

func (m *memBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return nil, errors.New("connection reset")
	}
	m.nextID++
	created := *b
	created.ID = m.nextID
	m.bookings = append(m.bookings, created)
	return &created, nil
}

func (m *memBookings) UpdateGuestFields(_ context.Context, id int64, numGuests int, observations string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errors.New("connection reset")
	}
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings[i].NumGuests = numGuests
			m.bookings[i].Observations = observations
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBookings) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errors.New("connection reset")
	}
	m.bookings = slices.DeleteFunc(m.bookings, func(b domain.Booking) bool { return b.ID == id })
	return nil
}

func (m *memBookings) find(id int64) (domain.Booking, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.bookings, func(b domain.Booking) bool { return b.ID == id })
	if i < 0 {
		return domain.Booking{}, false
	}
	return m.bookings[i], true
}

type memGuests struct {
	mu      sync.Mutex
	guests  map[int64]*domain.Guest
	updates int
}

func (m *memGuests) GetByID(_ context.Context, id int64) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *memGuests) GetByEmail(_ context.Context, email string) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.guests {
		if g.Email == email {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memGuests) Create(_ context.Context, fullName, email string) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &domain.Guest{ID: int64(len(m.guests) + 1), FullName: fullName, Email: email}
	m.guests[g.ID] = g
	return g, nil
}

func (m *memGuests) UpdateProfile(_ context.Context, id int64, p domain.GuestProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	g, ok := m.guests[id]
	if !ok {
		return domain.ErrNotFound
	}
	g.Nationality, g.CountryFlag, g.NationalID = p.Nationality, p.CountryFlag, p.NationalID
	return nil
}

type stubIdentityProvider struct{}

func (stubIdentityProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/authorize?state=" + state
}

func (stubIdentityProvider) Identify(context.Context, string) (*session.Identity, error) {
	return &session.Identity{Email: "jonas@example.com", Name: "Jonas Schmedtmann"}, nil
}

type webTestServer struct {
	t        *testing.T
	handler  http.Handler
	redis    *miniredis.Miniredis
	store    *memBookings
	guests   *memGuests
	sessions *session.Provider
	cookies  map[string]*http.Cookie
}

const (
	jonasID = int64(1)
	otherID = int64(2)
)

func newWebTestServer(t *testing.T, limiter ...func(redis.Cmdable) *mw.RateLimiter) *webTestServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &memBookings{
		cabins: []domain.Cabin{
			{ID: 1, Name: "001", MaxCapacity: 2, RegularPrice: 250, Discount: 50, Image: "/img/001.jpg"},
			{ID: 2, Name: "005", MaxCapacity: 6, RegularPrice: 400},
			{ID: 3, Name: "008", MaxCapacity: 10, RegularPrice: 900},
		},
		bookings: []domain.Booking{
			{ID: 10, GuestID: jonasID, CabinID: 2, NumGuests: 2, NumNights: 3, Status: domain.BookingUnconfirmed,
				StartDate: time.Now().AddDate(0, 1, 0), EndDate: time.Now().AddDate(0, 1, 3)},
			{ID: 20, GuestID: otherID, CabinID: 2, NumGuests: 4, Observations: "theirs", Status: domain.BookingUnconfirmed,
				StartDate: time.Now().AddDate(0, 2, 0), EndDate: time.Now().AddDate(0, 2, 2)},
		},
		nextID: 100,
	}
	guests := &memGuests{guests: map[int64]*domain.Guest{
		jonasID: {ID: jonasID, FullName: "Jonas Schmedtmann", Email: "jonas@example.com"},
		otherID: {ID: otherID, FullName: "Other Guest", Email: "other@example.com"},
	}}

	cache := views.New(client, views.DefaultConfig())
	acts := actions.New(store, store, guests, cache, nil)
	sessions := session.NewProvider(
		session.Config{Secret: "handler-test-secret", TTL: time.Hour},
		guests,
		map[string]session.IdentityProvider{"google": stubIdentityProvider{}},
	)

	cfg := handlers.RouterConfig{ServiceName: "web", AllowedOrigins: []string{"http://localhost:8080"}}
	if len(limiter) > 0 {
		cfg.Limiter = limiter[0](client)
	}
	h := handlers.New(store, store, guests, acts, sessions, cache)

	return &webTestServer{
		t:        t,
		handler:  h.Routes(cfg),
		redis:    mr,
		store:    store,
		guests:   guests,
		sessions: sessions,
		cookies:  map[string]*http.Cookie{},
	}
}

func (ts *webTestServer) signInAs(guestID int64) {
	ts.t.Helper()
	guest, err := ts.guests.GetByID(context.Background(), guestID)
	require.NoError(ts.t, err)
	rec := httptest.NewRecorder()
	require.NoError(ts.t, ts.sessions.Issue(rec, guest))
	ts.extract(rec)
}

func (ts *webTestServer) request(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	ts.extract(rr)
	return rr
}

func (ts *webTestServer) extract(rr *httptest.ResponseRecorder) {
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(ts.cookies, c.Name)
		} else {
			ts.cookies[c.Name] = c
		}
	}
}

func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, nil)
}

func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, nil)
}

func (ts *webTestServer) postJSON(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, http.Header{"Accept": {"application/json"}})
}

func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	require.Equal(ts.t, http.StatusSeeOther, rr.Code)
	return ts.get(rr.Header().Get("Location"))
}

func parseHTML(t *testing.T, r io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(r)
	require.NoError(t, err)
	return doc
}

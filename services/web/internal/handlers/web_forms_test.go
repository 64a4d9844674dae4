package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/diagnosis/zenith-cabins/pkg/middleware"
	"github.com/diagnosis/zenith-cabins/pkg/response"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

func decodeError(t *testing.T, body []byte) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func reservationForm(guests string) url.Values {
	return url.Values{
		"startDate":    {"2026-12-01"},
		"endDate":      {"2026-12-04"},
		"numGuests":    {guests},
		"observations": {"Late arrival"},
		"status":       {"checked-in"},
		"isPaid":       {"true"},
	}
}

func TestCreateBookingAnonymousRedirectsToLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/cabins/1/reservations", reservationForm("2"))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Len(t, ts.store.bookings, 2)
}

func TestCreateBooking(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	ts.get("/cabins/1")
	require.True(t, ts.redis.Exists("view:/cabins/1"))

	rr := ts.post("/cabins/1/reservations", reservationForm("2"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/cabins/thankyou", rr.Header().Get("Location"))

	created, ok := ts.store.find(101)
	require.True(t, ok)
	assert.Equal(t, jonasID, created.GuestID)
	assert.Equal(t, int64(1), created.CabinID)
	assert.Equal(t, 3, created.NumNights)
	assert.Equal(t, 600.0, created.CabinPrice)
	assert.Equal(t, 600.0, created.TotalPrice)
	assert.Equal(t, domain.BookingUnconfirmed, created.Status)
	assert.False(t, created.IsPaid)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), created.StartDate)

	assert.False(t, ts.redis.Exists("view:/cabins/1"), "cabin page should be stale")
}

func TestCreateBookingRefreshesReservationList(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	before := ts.get("/account/reservations")
	require.Equal(t, http.StatusOK, before.Code)
	assert.Equal(t, 1, parseHTML(t, before.Body).Find("li.reservation").Length())
	require.Equal(t, "hit", ts.get("/account/reservations").Header().Get("X-View-Cache"))

	rr := ts.post("/cabins/1/reservations", reservationForm("2"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/cabins/thankyou", rr.Header().Get("Location"))

	after := ts.get("/account/reservations")
	require.Equal(t, http.StatusOK, after.Code)
	assert.Equal(t, "miss", after.Header().Get("X-View-Cache"))
	assert.Equal(t, 2, parseHTML(t, after.Body).Find("li.reservation").Length())
}

func TestCreateBookingInvalidInputFlashesBack(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"zero guests", reservationForm("0")},
		{"missing guests", reservationForm("")},
		{"reversed dates", url.Values{"startDate": {"2026-12-04"}, "endDate": {"2026-12-01"}, "numGuests": {"2"}}},
		{"missing dates", url.Values{"numGuests": {"2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newWebTestServer(t)
			ts.signInAs(jonasID)

			rr := ts.post("/cabins/1/reservations", tt.form)
			require.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/cabins/1", rr.Header().Get("Location"))
			assert.Len(t, ts.store.bookings, 2)

			page := ts.followRedirect(rr)
			assert.Equal(t, 1, parseHTML(t, page.Body).Find(".flash-error").Length())
		})
	}
}

func TestCreateBookingPersistenceFailure(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)
	ts.store.failWrites = true

	rr := ts.post("/cabins/1/reservations", reservationForm("2"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, response.CodePersistence, decodeError(t, rr.Body.Bytes()).Code)
}

func TestUpdateProfile(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)
	ts.get("/account/profile")

	rr := ts.post("/account/profile", url.Values{
		"nationalID":  {"AB12345"},
		"nationality": {"Portugal%https://flagcdn.com/pt.svg"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/profile", rr.Header().Get("Location"))

	g := ts.guests.guests[jonasID]
	assert.Equal(t, "Portugal", g.Nationality)
	assert.Equal(t, "https://flagcdn.com/pt.svg", g.CountryFlag)
	assert.Equal(t, "AB12345", g.NationalID)

	doc := parseHTML(t, ts.followRedirect(rr).Body)
	assert.Equal(t, "Profile updated", doc.Find(".flash-success").Text())
	assert.Equal(t, "AB12345", doc.Find("input[name='nationalID']").AttrOr("value", ""))
}

func TestUpdateProfileRejectsBadNationalID(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	rr := ts.post("/account/profile", url.Values{"nationalID": {"ab-12"}, "nationality": {"Spain%x"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/profile", rr.Header().Get("Location"))
	assert.Empty(t, ts.guests.guests[jonasID].Nationality)

	rr = ts.postJSON("/account/profile", url.Values{"nationalID": {"ab-12"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, response.CodeInvalidInput, decodeError(t, rr.Body.Bytes()).Code)
}

func TestUpdateProfileRejectsPaddedNationalID(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	rr := ts.post("/account/profile", url.Values{
		"nationalID":  {" AB12345 "},
		"nationality": {"Portugal%https://flagcdn.com/pt.svg"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/profile", rr.Header().Get("Location"))
	assert.Zero(t, ts.guests.updates)
	assert.Empty(t, ts.guests.guests[jonasID].NationalID)

	doc := parseHTML(t, ts.followRedirect(rr).Body)
	assert.Equal(t, 1, doc.Find(".flash-error").Length())
}

func TestUpdateProfileAnonymous(t *testing.T) {
	ts := newWebTestServer(t)
	form := url.Values{"nationalID": {"AB12345"}}

	rr := ts.post("/account/profile", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = ts.postJSON("/account/profile", form)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, response.CodeUnauthorized, decodeError(t, rr.Body.Bytes()).Code)
}

func TestUpdateReservation(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)
	ts.get("/account/reservations")
	ts.get("/account/reservations/edit/10")

	rr := ts.post("/account/reservations/edit", url.Values{
		"reservationId": {"10"},
		"numGuests":     {"5"},
		"observations":  {"Bringing a dog"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/reservations", rr.Header().Get("Location"))

	b, _ := ts.store.find(10)
	assert.Equal(t, 5, b.NumGuests)
	assert.Equal(t, "Bringing a dog", b.Observations)
	assert.False(t, ts.redis.Exists("view:/account/reservations"))
	assert.False(t, ts.redis.Exists("view:/account/reservations/edit/10"))
}

func TestUpdateReservationForeignBookingIsForbidden(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	rr := ts.post("/account/reservations/edit", url.Values{
		"reservationId": {"20"},
		"numGuests":     {"1"},
		"observations":  {"hijacked"},
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, response.CodeUnauthorizedMutation, decodeError(t, rr.Body.Bytes()).Code)

	b, _ := ts.store.find(20)
	assert.Equal(t, 4, b.NumGuests)
	assert.Equal(t, "theirs", b.Observations)
}

func TestUpdateReservationInvalidGuestsReturnsToEditPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	rr := ts.post("/account/reservations/edit", url.Values{"reservationId": {"10"}, "numGuests": {"0"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/reservations/edit/10", rr.Header().Get("Location"))
}

func TestDeleteReservation(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)
	ts.get("/account/reservations")
	require.True(t, ts.redis.Exists("view:/account/reservations"))

	rr := ts.post("/account/reservations/10/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/reservations", rr.Header().Get("Location"))

	_, ok := ts.store.find(10)
	assert.False(t, ok)
	assert.False(t, ts.redis.Exists("view:/account/reservations"))

	doc := parseHTML(t, ts.followRedirect(rr).Body)
	assert.Zero(t, doc.Find("li.reservation").Length())
}

func TestDeleteReservationRefreshesCabinAndEditPages(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)
	ts.get("/cabins/2")
	ts.get("/account/reservations/edit/10")
	require.True(t, ts.redis.Exists("view:/cabins/2"))
	require.True(t, ts.redis.Exists("view:/account/reservations/edit/10"))

	rr := ts.post("/account/reservations/10/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	assert.False(t, ts.redis.Exists("view:/cabins/2"))
	assert.False(t, ts.redis.Exists("view:/account/reservations/edit/10"))
}

func TestDeleteReservationForeignBookingIsForbidden(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)

	rr := ts.post("/account/reservations/20/delete", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	_, ok := ts.store.find(20)
	assert.True(t, ok)
}

func TestDeleteReservationAnonymous(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/account/reservations/10/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	_, ok := ts.store.find(10)
	assert.True(t, ok)
}

func TestSignInFlow(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/signin", url.Values{"provider": {"google"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example", location.Host)

	state := location.Query().Get("state")
	rr = ts.get("/auth/callback/google?code=abc&state=" + url.QueryEscape(state))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account", rr.Header().Get("Location"))

	doc := parseHTML(t, ts.followRedirect(rr).Body)
	assert.Equal(t, "Welcome, Jonas", doc.Find(".welcome").Text())
}

func TestSignInCallbackWithForgedState(t *testing.T) {
	ts := newWebTestServer(t)
	ts.post("/auth/signin", nil)

	rr := ts.get("/auth/callback/google?code=abc&state=forged")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Equal(t, http.StatusSeeOther, ts.get("/account").Code)
}

func TestSignInUnknownProvider(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/signin", url.Values{"provider": {"myspace"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestSignOut(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs(jonasID)
	require.Equal(t, http.StatusOK, ts.get("/account").Code)

	rr := ts.post("/auth/signout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, http.StatusSeeOther, ts.get("/account").Code)
}

func TestMutationsAreRateLimited(t *testing.T) {
	ts := newWebTestServer(t, func(client redis.Cmdable) *mw.RateLimiter {
		return mw.NewRateLimiter(client, mw.RateLimitConfig{
			Requests: 1,
			Window:   time.Minute,
			SkipFunc: mw.OnlyMutations,
		})
	})
	ts.signInAs(jonasID)

	assert.Equal(t, http.StatusSeeOther, ts.post("/account/reservations/10/delete", nil).Code)
	rr := ts.post("/account/reservations/10/delete", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, http.StatusOK, ts.get("/cabins").Code)
}

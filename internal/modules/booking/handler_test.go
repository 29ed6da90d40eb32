package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkspot/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(f *fixture, actor domain.Actor) *gin.Engine {
	r := gin.New()
	h := NewHandler(f.svc)
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if !actor.IsGuest() {
			c.Set("user_id", actor.UserID)
			c.Set("role", string(actor.Role))
		}
		c.Next()
	})
	h.RegisterPublicRoutes(api, func(c *gin.Context) { c.Next() })
	h.RegisterRoutes(api)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_CreateBookingAsGuest(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, domain.Actor{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/bookings", f.request(day(1), day(3)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Booking domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.InDelta(t, 117.99, data.Booking.TotalPrice, 0.0001)
	assert.Equal(t, domain.BookingPending, data.Booking.Status)

	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings", f.request(day(2), day(4)))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_SPOTS_AVAILABLE", decode(t, w).Error.Code)
}

func TestHandler_CreateBookingValidation(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, domain.Actor{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/bookings", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := f.request(day(1), day(3))
	req.GuestEmail = "not-an-email"
	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings", req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings", f.request(day(3), day(1)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE_RANGE", decode(t, w).Error.Code)
}

func TestHandler_CancelTwice(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, customer)

	b, err := f.svc.CreateBooking(t.Context(), customer, f.request(day(1), day(3)))
	require.NoError(t, err)

	path := fmt.Sprintf("/api/v1/bookings/%d/cancel", b.ID)
	w := doJSON(t, r, http.MethodPost, path, ReasonRequest{Reason: "changed plans"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_CANCELLED", decode(t, w).Error.Code)
}

func TestHandler_ApproveForbiddenForCustomer(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, customer)

	b, err := f.svc.CreateBooking(t.Context(), customer, f.request(day(1), day(3)))
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/approve", b.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/bookings/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Quote(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, domain.Actor{})

	q := url.Values{}
	q.Set("check_in", day(1).Format(time.RFC3339))
	q.Set("check_out", day(3).Format(time.RFC3339))

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d/quote?%s", f.loc.ID, q.Encode()), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":117.99`)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d/availability?%s", f.loc.ID, q.Encode()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining_spots":1`)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d/quote", f.loc.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

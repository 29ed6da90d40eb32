package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkspot/internal/database"
	"parkspot/internal/domain"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/modules/booking"
	"parkspot/internal/modules/refund"
	"parkspot/internal/modules/request"
	"parkspot/internal/modules/session"
	jwtsvc "parkspot/internal/pkg/jwt"
	"parkspot/internal/pkg/logger"
	"parkspot/internal/pkg/testdb"
	"parkspot/internal/repository"
)

type e2eSuite struct {
	router *gin.Engine
	store  *repository.Store
	tokens map[domain.UserRole]string
	loc    *domain.Location
}

type testResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error,omitempty"`
}

func setupSuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db := testdb.Open(t, database.Models()...)
	store := repository.NewStore(db)
	log := logger.Discard()
	j := jwtsvc.New("test_secret_key_32_characters_min", time.Hour)

	users := []domain.User{
		{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: 2, Email: "owner@example.com", Role: domain.RoleOwner},
		{ID: 3, Email: "staff@example.com", Role: domain.RoleStaff},
		{ID: 4, Email: "customer@example.com", Role: domain.RoleCustomer},
	}
	tokens := map[domain.UserRole]string{}
	for i := range users {
		require.NoError(t, store.Users.Create(ctx, &users[i]))
		token, err := j.GenerateToken(users[i].ID, string(users[i].Role))
		require.NoError(t, err)
		tokens[users[i].Role] = token
	}

	loc := &domain.Location{
		OwnerID: 2, Name: "E2E Lot", TotalSpots: 1, AvailableSpots: 1, BasePricePerDay: 50,
		Status: domain.LocationActive, CancellationPolicyType: domain.PolicyModerate, CancellationPolicyHours: 24,
	}
	require.NoError(t, store.Locations.Create(ctx, loc))

	bookings := booking.NewService(store, log)
	effects := bookings.Effects()
	r := newRouter(routerDeps{
		log:      log,
		db:       db,
		jwt:      j,
		bookings: bookings,
		requests: request.NewService(store, effects, log),
		sessions: session.NewService(store, effects, log),
		refunds:  refund.NewService(store, log),
		wallets:  wallet.NewService(db),
	})
	return &e2eSuite{router: r, store: store, tokens: tokens, loc: loc}
}

func (s *e2eSuite) do(t *testing.T, method, path string, role domain.UserRole, body any) (int, testResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[role])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp testResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func idOf(t *testing.T, resp testResponse, key string) int64 {
	t.Helper()
	obj, ok := resp.Data[key].(map[string]any)
	require.True(t, ok, "missing %s in response", key)
	return int64(obj["id"].(float64))
}

func TestHealthz(t *testing.T) {
	s := setupSuite(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFlow_CustomerBooksOwnerApprovesCustomerCancels(t *testing.T) {
	s := setupSuite(t)
	in := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Hour)

	code, resp := s.do(t, http.MethodPost, "/api/v1/bookings", domain.RoleCustomer, booking.CreateBookingRequest{
		LocationID: s.loc.ID, CheckIn: in, CheckOut: in.Add(48 * time.Hour), GuestFirstName: "Pat",
	})
	require.Equal(t, http.StatusCreated, code)
	bookingID := idOf(t, resp, "booking")

	code, resp = s.do(t, http.MethodPost, "/api/v1/bookings", "", booking.CreateBookingRequest{
		LocationID: s.loc.ID, CheckIn: in.Add(24 * time.Hour), CheckOut: in.Add(72 * time.Hour), GuestFirstName: "Guest",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NO_SPOTS_AVAILABLE", resp.Error.Code)

	code, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/approve", bookingID), domain.RoleOwner, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do(t, http.MethodGet, "/api/v1/wallets/me", domain.RoleOwner, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 85.0, resp.Data["balance"])

	code, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID), domain.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, code)
	refundID := idOf(t, resp, "refund_request")

	code, resp = s.do(t, http.MethodGet, "/api/v1/admin/refunds?status=PENDING", domain.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data["refunds"], 1)

	code, _ = s.do(t, http.MethodGet, "/api/v1/admin/refunds", domain.RoleOwner, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/refunds/%d/approve", refundID), domain.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "APPROVED", resp.Data["refund"].(map[string]any)["status"])
}

func TestFlow_StaffWalkInCheckInCheckOut(t *testing.T) {
	s := setupSuite(t)
	now := time.Now().UTC()

	code, _ := s.do(t, http.MethodPost, "/api/v1/staff/requests", domain.RoleCustomer, request.CreateRequest{})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(t, http.MethodPost, "/api/v1/staff/requests", domain.RoleStaff, request.CreateRequest{
		LocationID:      s.loc.ID,
		Type:            string(domain.RequestWalkIn),
		RequestedStart:  now.Add(time.Hour),
		RequestedEnd:    now.Add(25 * time.Hour),
		EstimatedAmount: 50,
		CustomerName:    "Walk In",
	})
	require.Equal(t, http.StatusCreated, code)
	requestID := idOf(t, resp, "request")

	code, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/staff/requests/%d/convert", requestID), domain.RoleStaff, nil)
	require.Equal(t, http.StatusOK, code)
	bookingID := idOf(t, resp, "booking")

	code, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/staff/bookings/%d/check-in", bookingID), domain.RoleStaff, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/staff/bookings/%d/check-out", bookingID), domain.RoleStaff, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "COMPLETED", resp.Data["booking"].(map[string]any)["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupSuite(t)

	code, resp := s.do(t, http.MethodGet, "/api/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
}

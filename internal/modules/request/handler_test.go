package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(f *fixture, userID int64, role string) *gin.Engine {
	r := gin.New()
	staff := r.Group("/api/v1/staff")
	staff.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(staff)
	return r
}

func post(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateAndConvert(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, staffID, "staff")

	w := post(t, r, "/api/v1/staff/requests", CreateRequest{
		LocationID:      f.loc.ID,
		Type:            "WALK_IN",
		RequestedStart:  day(1),
		RequestedEnd:    day(2),
		EstimatedAmount: 40,
		CustomerName:    "Ana Ruiz",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			Request struct {
				ID int64 `json:"id"`
			} `json:"request"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/v1/staff/requests/%d/convert", created.Data.Request.ID)
	w = post(t, r, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"CONFIRMED"`)

	w = post(t, r, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST_STATE")
}

func TestHandler_CreateRejectsUnknownType(t *testing.T) {
	f := setup(t, 1)
	r := newTestRouter(f, staffID, "staff")

	w := post(t, r, "/api/v1/staff/requests", CreateRequest{LocationID: f.loc.ID, Type: "TELEPORT"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_ConvertByNonStaffUser(t *testing.T) {
	f := setup(t, 1)
	req := f.walkIn(t, day(1), day(2), 40)
	r := newTestRouter(f, customerID, "staff")

	w := post(t, r, fmt.Sprintf("/api/v1/staff/requests/%d/convert", req.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

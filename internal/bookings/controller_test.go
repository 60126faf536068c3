package bookings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func newTestRouter(t *testing.T, repo Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	r := gin.New()
	SetupBookingRoutes(r.Group("/api/v1"), NewController(NewService(repo, nil, nil)))
	return r
}

func do(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestController_ListBookings(t *testing.T) {
	repo := new(mockRepository)
	repo.On("List", mock.Anything, BookingListQuery{Status: "refunded", Search: "neon", Page: 1, Limit: 20}).
		Return([]Booking{}, int64(0), nil)
	r := newTestRouter(t, repo)

	rec, env := do(r, http.MethodGet, "/api/v1/admin/bookings?status=refunded&search=neon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)

	rec, env = do(r, http.MethodGet, "/api/v1/admin/bookings?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Errors), "status")
}

func TestController_GetBooking(t *testing.T) {
	repo := new(mockRepository)
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, ErrBookingNotFound)
	r := newTestRouter(t, repo)

	rec, _ := do(r, http.MethodGet, "/api/v1/admin/bookings/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(r, http.MethodGet, "/api/v1/admin/bookings/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestController_UpdateStatus(t *testing.T) {
	repo := new(mockRepository)
	id := uuid.New()
	conflict := uuid.New()
	booking := &Booking{ID: id, EventID: testEvent.ID, Status: StatusRefunded, TicketCount: 1}
	repo.On("UpdateStatus", mock.Anything, id, StatusRefunded).Return(booking, StatusConfirmed, nil)
	repo.On("UpdateStatus", mock.Anything, conflict, StatusConfirmed).Return(nil, Status(""), ErrSeatTaken)
	r := newTestRouter(t, repo)

	rec, env := do(r, http.MethodPatch, "/api/v1/admin/bookings/"+id.String()+"/status", UpdateStatusRequest{Status: "refunded"})
	require.Equal(t, http.StatusOK, rec.Code)
	var got BookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, StatusRefunded, got.Status)

	rec, _ = do(r, http.MethodPatch, "/api/v1/admin/bookings/"+conflict.String()+"/status", UpdateStatusRequest{Status: "confirmed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(r, http.MethodPatch, "/api/v1/admin/bookings/"+id.String()+"/status", UpdateStatusRequest{Status: "CONFIRMED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package bookings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neontix/internal/events"
	"neontix/internal/shared/utils/response"
	"neontix/internal/shared/validation"
)

type Controller interface {
	ListBookings(c *gin.Context)
	GetBooking(c *gin.Context)
	UpdateStatus(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// ListBookings godoc
// @Summary List bookings
// @Description Newest first. Search matches the event title or the booking id.
// @Tags admin-bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "confirmed, pending, cancelled or refunded"
// @Param search query string false "Event title or booking id"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.StandardApiResponse{data=PaginatedBookings}
// @Router /admin/bookings [get]
func (ctrl *controller) ListBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, validation.Details(err))
		return
	}

	bookings, err := ctrl.service.ListBookings(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// GetBooking godoc
// @Summary Get a booking
// @Tags admin-bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.StandardApiResponse{data=BookingResponse}
// @Failure 404 {object} response.StandardApiResponse
// @Router /admin/bookings/{id} [get]
func (ctrl *controller) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// UpdateStatus godoc
// @Summary Change a booking's status
// @Description Cancelling or refunding returns the seats to the event.
// @Tags admin-bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} response.StandardApiResponse{data=BookingResponse}
// @Failure 409 {object} response.StandardApiResponse
// @Router /admin/bookings/{id}/status [patch]
func (ctrl *controller) UpdateStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, validation.Details(err))
		return
	}

	booking, err := ctrl.service.UpdateStatus(c.Request.Context(), bookingID, Status(req.Status))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking status updated", booking, nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, events.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidEventID), errors.Is(err, ErrNoSeats):
		return http.StatusBadRequest
	case errors.Is(err, ErrSoldOut), errors.Is(err, ErrSeatTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

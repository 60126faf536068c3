package storefront

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"neontix/internal/bookings"
	"neontix/internal/checkout"
	"neontix/internal/events"
	"neontix/internal/realtime"
	"neontix/internal/shared/utils/response"
	"neontix/internal/shared/validation"
	"neontix/pkg/logger"
)

type Controller interface {
	CreateSession(c *gin.Context)
	GetSession(c *gin.Context)
	CloseSession(c *gin.Context)
	OpenEvent(c *gin.Context)
	GetSeatMap(c *gin.Context)
	ToggleSeat(c *gin.Context)
	ClearSelection(c *gin.Context)
	GetCart(c *gin.Context)
	StartCheckout(c *gin.Context)
	GetCheckout(c *gin.Context)
	ConfirmCheckout(c *gin.Context)
	CancelCheckout(c *gin.Context)
	SessionStream(c *gin.Context)
	EventStream(c *gin.Context)
}

type controller struct {
	service  Service
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewController(service Service, hub *realtime.Hub, allowedOrigins []string) Controller {
	return &controller{
		service:  service,
		hub:      hub,
		upgrader: realtime.Upgrader(allowedOrigins),
		log:      logger.GetDefault(),
	}
}

// CreateSession godoc
// @Summary Start a shopper session
// @Tags storefront
// @Produce json
// @Success 201 {object} response.StandardApiResponse{data=SessionResponse}
// @Router /storefront/sessions [post]
func (ctrl *controller) CreateSession(c *gin.Context) {
	session, err := ctrl.service.CreateSession(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Session created successfully", session, nil)
}

// GetSession godoc
// @Summary Get a shopper session
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse{data=SessionResponse}
// @Failure 404 {object} response.StandardApiResponse
// @Router /storefront/sessions/{id} [get]
func (ctrl *controller) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	session, err := ctrl.service.GetSession(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Session retrieved successfully", session, nil)
}

// CloseSession godoc
// @Summary Close a shopper session
// @Description Stops any running checkout countdown and drops the selection.
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /storefront/sessions/{id} [delete]
func (ctrl *controller) CloseSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := ctrl.service.CloseSession(c.Request.Context(), id); err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Session closed successfully", nil, nil)
}

// OpenEvent godoc
// @Summary Open an event's seat map
// @Description Generates the seat chart. Switching events clears the selection.
// @Tags storefront
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param event body OpenEventRequest true "Event to open"
// @Success 200 {object} response.StandardApiResponse{data=SeatMapResponse}
// @Failure 404 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /storefront/sessions/{id}/event [put]
func (ctrl *controller) OpenEvent(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req OpenEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request data", nil, validation.Details(err))
		return
	}

	seatMap, err := ctrl.service.OpenEvent(c.Request.Context(), id, uuid.MustParse(req.EventID))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat map generated successfully", seatMap, nil)
}

// GetSeatMap godoc
// @Summary Get the open event's seat map
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse{data=SeatMapResponse}
// @Router /storefront/sessions/{id}/seats [get]
func (ctrl *controller) GetSeatMap(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	seatMap, err := ctrl.service.GetSeatMap(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

// ToggleSeat godoc
// @Summary Select or deselect a seat
// @Description Booked seats are ignored and reported with result "ignored".
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Param seatId path string true "Seat ID, e.g. D5"
// @Success 200 {object} response.StandardApiResponse{data=ToggleResponse}
// @Router /storefront/sessions/{id}/seats/{seatId}/toggle [post]
func (ctrl *controller) ToggleSeat(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := ctrl.service.ToggleSeat(c.Request.Context(), id, c.Param("seatId"))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat "+result.Result, result, nil)
}

// ClearSelection godoc
// @Summary Clear the selection
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse{data=CartResponse}
// @Router /storefront/sessions/{id}/selection [delete]
func (ctrl *controller) ClearSelection(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	cart, err := ctrl.service.ClearSelection(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Selection cleared", cart, nil)
}

// GetCart godoc
// @Summary Get the selection with its price breakdown
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse{data=CartResponse}
// @Router /storefront/sessions/{id}/cart [get]
func (ctrl *controller) GetCart(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	cart, err := ctrl.service.GetCart(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cart retrieved successfully", cart, nil)
}

// StartCheckout godoc
// @Summary Start the checkout countdown
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.StandardApiResponse{data=checkout.Snapshot}
// @Failure 400 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /storefront/sessions/{id}/checkout [post]
func (ctrl *controller) StartCheckout(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snap, err := ctrl.service.StartCheckout(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Checkout started", snap, nil)
}

// GetCheckout godoc
// @Summary Get the checkout state and countdown
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse{data=checkout.Snapshot}
// @Router /storefront/sessions/{id}/checkout [get]
func (ctrl *controller) GetCheckout(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snap, err := ctrl.service.GetCheckout(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Checkout retrieved successfully", snap, nil)
}

// ConfirmCheckout godoc
// @Summary Pay and book the selected seats
// @Description On failure the seats stay held and the countdown keeps running.
// @Tags storefront
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payment body ConfirmCheckoutRequest false "Payment and contact details"
// @Success 200 {object} response.StandardApiResponse{data=checkout.Receipt}
// @Failure 402 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Failure 410 {object} response.StandardApiResponse
// @Router /storefront/sessions/{id}/checkout/confirm [post]
func (ctrl *controller) ConfirmCheckout(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req ConfirmCheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request data", nil, validation.Details(err))
			return
		}
	}

	receipt, err := ctrl.service.ConfirmCheckout(c.Request.Context(), id, c.GetString("user_id"), req)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking confirmed! Enjoy the show.", receipt, nil)
}

// CancelCheckout godoc
// @Summary Cancel the checkout
// @Description The selection is kept.
// @Tags storefront
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse{data=checkout.Snapshot}
// @Router /storefront/sessions/{id}/checkout/cancel [post]
func (ctrl *controller) CancelCheckout(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snap, err := ctrl.service.CancelCheckout(c.Request.Context(), id)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Checkout cancelled", snap, nil)
}

// SessionStream godoc
// @Summary Stream checkout ticks and notices
// @Description Websocket. Frames are realtime.Message JSON objects.
// @Tags storefront
// @Param id path string true "Session ID"
// @Router /storefront/sessions/{id}/ws [get]
func (ctrl *controller) SessionStream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if _, err := ctrl.service.GetSession(c.Request.Context(), id); err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	ctrl.serve(c, id.String())
}

// EventStream godoc
// @Summary Stream seat bookings for an event
// @Description Websocket. Pushes seats_booked frames as other shoppers confirm.
// @Tags storefront
// @Param id path string true "Event ID"
// @Router /events/{id}/ws [get]
func (ctrl *controller) EventStream(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	ctrl.serve(c, realtime.EventTopic(eventID.String()))
}

func (ctrl *controller) serve(c *gin.Context, topic string) {
	// A failed upgrade has already written its HTTP error
	if err := ctrl.hub.Serve(&ctrl.upgrader, c.Writer, c.Request, topic); err != nil {
		ctrl.log.WarnContext(c.Request.Context(), "Websocket stream not opened", "topic", topic, "error", err.Error())
	}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid session ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSeatNotFound),
		errors.Is(err, ErrNoCheckout),
		errors.Is(err, events.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionClosed),
		errors.Is(err, checkout.ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrNoEventOpen),
		errors.Is(err, checkout.ErrNoEvent),
		errors.Is(err, checkout.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrCheckoutActive),
		errors.Is(err, checkout.ErrNotIdle),
		errors.Is(err, checkout.ErrNotActive),
		errors.Is(err, checkout.ErrConfirmInFlight),
		errors.Is(err, bookings.ErrSeatTaken),
		errors.Is(err, bookings.ErrSoldOut):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

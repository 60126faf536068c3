package events

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neontix/internal/shared/utils/response"
	"neontix/internal/shared/validation"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
	UpdateEvent(c *gin.Context)
	DeleteEvent(c *gin.Context)
	GetAllEvents(c *gin.Context)
	GetAdminEvents(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreateEvent godoc
// @Summary Create an event
// @Tags admin-events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event"
// @Success 201 {object} response.StandardApiResponse{data=EventResponse}
// @Router /admin/events [post]
func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, validation.Details(err))
		return
	}

	adminID := c.GetString("user_id")

	event, err := ctrl.service.CreateEvent(c.Request.Context(), adminID, req)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Event created successfully", event, nil)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.StandardApiResponse{data=EventResponse}
// @Failure 404 {object} response.StandardApiResponse
// @Router /events/{id} [get]
func (ctrl *controller) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	event, err := ctrl.service.GetEventByID(c.Request.Context(), eventID)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags admin-events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} response.StandardApiResponse{data=EventResponse}
// @Router /admin/events/{id} [put]
func (ctrl *controller) UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, validation.Details(err))
		return
	}

	event, err := ctrl.service.UpdateEvent(c.Request.Context(), eventID, req)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event updated successfully", event, nil)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags admin-events
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/events/{id} [delete]
func (ctrl *controller) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteEvent(c.Request.Context(), eventID); err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event deleted successfully", nil, nil)
}

// GetAllEvents godoc
// @Summary Browse the catalog
// @Tags events
// @Produce json
// @Param category query string false "movie, concert, comedy or sports"
// @Param min_price query int false "Lowest starting price"
// @Param max_price query int false "Highest starting price"
// @Param search query string false "Matches title, venue or city"
// @Success 200 {object} response.StandardApiResponse{data=PaginatedEvents}
// @Router /events [get]
func (ctrl *controller) GetAllEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, validation.Details(err))
		return
	}

	events, err := ctrl.service.GetAllEvents(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

// GetAdminEvents lists events newest first for the admin console
func (ctrl *controller) GetAdminEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, validation.Details(err))
		return
	}
	if query.Sort == "" {
		query.Sort = "newest"
	}

	events, err := ctrl.service.GetAllEvents(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrSeatsExceedTotal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neontix/internal/shared/utils/response"
)

type Controller interface {
	GetDashboard(c *gin.Context)
	GetAnalytics(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetDashboard godoc
// @Summary Admin dashboard
// @Description Totals, the ten most recent bookings and revenue for the last seven days.
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse{data=DashboardAnalytics}
// @Router /admin/dashboard [get]
func (ctrl *controller) GetDashboard(c *gin.Context) {
	dashboard, err := ctrl.service.GetDashboard(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Dashboard analytics retrieved successfully", dashboard, nil)
}

// GetAnalytics godoc
// @Summary Admin analytics
// @Description Confirmed revenue, average order value, unique customers, category mix and revenue trends.
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse{data=AdminAnalytics}
// @Router /admin/analytics [get]
func (ctrl *controller) GetAnalytics(c *gin.Context) {
	analytics, err := ctrl.service.GetAnalytics(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Analytics retrieved successfully", analytics, nil)
}

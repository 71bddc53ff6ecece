package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/middleware"
	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/service"
	"github.com/jengzang/reallocation-screener/pkg/response"
)

// AdminHandler handles the administrative endpoints
type AdminHandler struct {
	screeningService   *service.ScreeningService
	integrationService *service.IntegrationService
	logger             *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(screeningService *service.ScreeningService, integrationService *service.IntegrationService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		screeningService:   screeningService,
		integrationService: integrationService,
		logger:             logger,
	}
}

// Reload handles POST /api/v1/admin/reload
func (h *AdminHandler) Reload(c *gin.Context) {
	info, err := h.screeningService.Reload(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Success(c, info)
}

// CreateIntegration handles POST /api/v1/admin/integrations
func (h *AdminHandler) CreateIntegration(c *gin.Context) {
	var req models.IntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	msg, err := h.integrationService.CreateIntegration(c.Request.Context(), req, middleware.GetActor(c))
	if err != nil {
		// platform error text is shown to the operator as-is
		response.InternalError(c, err.Error())
		return
	}

	response.Message(c, msg, nil)
}

package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthflow/clinic-api/internal/handler"
	"github.com/healthflow/clinic-api/internal/middleware"
	"github.com/healthflow/clinic-api/internal/model"
	auditService "github.com/healthflow/clinic-api/internal/service/audit"
	"github.com/healthflow/clinic-api/pkg/auth"
)

type Handler struct {
	service *auditService.Service
}

func NewHandler(service *auditService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	r.GET("/audit-logs", authMW.RequireRoles(auth.RoleSuperAdmin), h.ListAuditLogs)
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	var filter model.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	logs, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.NewPage(logs, total, filter.Pagination)))
}

package handlers

import (
	"net/http"

	"pennywise/internal/services"

	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the user's audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAuditLogs lists the user's audit entries, newest first.
// @Summary     Get audit logs
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       resource_type query string false "Filter by resource type, e.g. budget_group"
// @Param       resource_id   query string false "Filter by resource id"
// @Param       action        query string false "Filter by action, e.g. CREATE_BUDGET"
// @Param       since         query string false "Only entries on or after this date (YYYY-MM-DD)"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Paginated audit entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	since, err := queryDate(c, "since")
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.AuditFilter{
		ResourceType: c.Query("resource_type"),
		ResourceID:   c.Query("resource_id"),
		Action:       c.Query("action"),
		Since:        since,
	}
	result, err := h.auditService.GetUserAuditLogs(c.Request.Context(), userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

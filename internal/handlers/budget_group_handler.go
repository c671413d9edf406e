package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/export"
	"pennywise/internal/models"
	"pennywise/internal/period"
	"pennywise/internal/services"
)

// BudgetGroupHandler handles budget group requests.
type BudgetGroupHandler struct {
	groupService services.BudgetGroupServicer
	auditService services.AuditServicer
}

// NewBudgetGroupHandler creates a new BudgetGroupHandler.
func NewBudgetGroupHandler(groupService services.BudgetGroupServicer, auditService services.AuditServicer) *BudgetGroupHandler {
	return &BudgetGroupHandler{groupService: groupService, auditService: auditService}
}

// GenerateBudgetsRequest controls budget generation for a group.
type GenerateBudgetsRequest struct {
	Scope           models.CategoryScope       `json:"scope" binding:"required,category_scope"`
	DefaultAmount   *decimal.Decimal           `json:"default_amount" binding:"required,gt=0"`
	IncludeInactive bool                       `json:"include_inactive"`
	Overrides       map[string]decimal.Decimal `json:"overrides" binding:"omitempty,dive,keys,uuid,endkeys"`
}

func (r *GenerateBudgetsRequest) options() services.GenerateOptions {
	return services.GenerateOptions{
		Scope:           r.Scope,
		DefaultAmount:   *r.DefaultAmount,
		IncludeInactive: r.IncludeInactive,
		Overrides:       r.Overrides,
	}
}

// CreateBudgetGroupRequest represents the request payload for creating a group.
type CreateBudgetGroupRequest struct {
	Name        string                  `json:"name" binding:"required,min=1,max=100"`
	Description string                  `json:"description" binding:"max=500"`
	PeriodType  period.Type             `json:"period_type" binding:"required,period_type"`
	StartDate   string                  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string                  `json:"end_date" binding:"required,datetime=2006-01-02"`
	Currency    string                  `json:"currency" binding:"omitempty,iso4217"`
	AutoCreate  *GenerateBudgetsRequest `json:"auto_create"`
}

// UpdateBudgetGroupRequest represents the request payload for updating a group.
type UpdateBudgetGroupRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string      `json:"description" binding:"omitempty,max=500"`
	PeriodType  *period.Type `json:"period_type" binding:"omitempty,period_type"`
	StartDate   *string      `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string      `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Currency    *string      `json:"currency" binding:"omitempty,iso4217"`
	IsActive    *bool        `json:"is_active"`
}

// BulkUpdateRequest carries amount changes for a group's budgets.
type BulkUpdateRequest struct {
	Updates []services.AmountUpdate `json:"updates" binding:"required,min=1,max=500"`
}

// ValidatePeriodRequest asks whether a period is free for a group.
type ValidatePeriodRequest struct {
	StartDate string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" binding:"required,datetime=2006-01-02"`
	ExcludeID *string `json:"exclude_id" binding:"omitempty,uuid"`
}

// CreateBudgetGroup creates a group, optionally with generated budgets.
// @Summary     Create a budget group
// @Description Create a budget group. With auto_create, one budget per matching category is created in the same step.
// @Tags        budget-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetGroupRequest true "Group details"
// @Success     201 {object} models.BudgetGroup "Group created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Period overlaps an existing group"
// @Router      /budget-groups [post]
func (h *BudgetGroupHandler) CreateBudgetGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in := services.BudgetGroupInput{
		Name:        req.Name,
		Description: req.Description,
		PeriodType:  req.PeriodType,
		StartDate:   start,
		EndDate:     end,
		Currency:    req.Currency,
	}
	if req.AutoCreate != nil {
		opts := req.AutoCreate.options()
		in.AutoCreate = &opts
	}

	group, created, err := h.groupService.CreateBudgetGroup(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_BUDGET_GROUP", "budget_group", group.ID, c.ClientIP(),
		map[string]any{"name": group.Name, "start_date": req.StartDate, "end_date": req.EndDate, "budgets_created": created})

	c.JSON(http.StatusCreated, gin.H{"budget_group": group, "budgets_created": created})
}

// GetBudgetGroups lists the user's groups.
// @Summary     Get budget groups
// @Tags        budget-groups
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool false "Filter by active status"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetGroup] "Paginated groups"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget-groups [get]
func (h *BudgetGroupHandler) GetBudgetGroups(c *gin.Context) {
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
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.groupService.GetUserBudgetGroups(c.Request.Context(), userID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetGroup returns a group with its budgets.
// @Summary     Get budget group by ID
// @Tags        budget-groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} models.BudgetGroup "Group with budgets"
// @Failure     400 {object} ErrorResponse "Invalid group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /budget-groups/{id} [get]
func (h *BudgetGroupHandler) GetBudgetGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.GetBudgetGroupWithBudgets(c.Request.Context(), userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_group": group})
}

// UpdateBudgetGroup changes a group. Period and currency changes carry over
// to its active budgets.
// @Summary     Update budget group
// @Tags        budget-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Group ID"
// @Param       request body UpdateBudgetGroupRequest true "Group changes"
// @Success     200 {object} models.BudgetGroup "Updated group"
// @Failure     400 {object} ErrorResponse "Invalid input or group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     409 {object} ErrorResponse "Period overlaps an existing group"
// @Router      /budget-groups/{id} [put]
func (h *BudgetGroupHandler) UpdateBudgetGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.UpdateBudgetGroup(c.Request.Context(), userID, groupID, services.BudgetGroupUpdate{
		Name:        req.Name,
		Description: req.Description,
		PeriodType:  req.PeriodType,
		StartDate:   start,
		EndDate:     end,
		Currency:    req.Currency,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_BUDGET_GROUP", "budget_group", groupID, c.ClientIP(),
		map[string]any{"name": group.Name, "currency": group.Currency, "is_active": group.IsActive})

	c.JSON(http.StatusOK, gin.H{"budget_group": group})
}

// DeactivateBudgetGroup marks a group inactive. Its budgets are untouched.
// @Summary     Deactivate budget group
// @Tags        budget-groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} MessageResponse "Group deactivated"
// @Failure     400 {object} ErrorResponse "Invalid group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /budget-groups/{id} [delete]
func (h *BudgetGroupHandler) DeactivateBudgetGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.groupService.DeactivateBudgetGroup(c.Request.Context(), userID, groupID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DEACTIVATE_BUDGET_GROUP", "budget_group", groupID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget group deactivated successfully"})
}

// GetCurrentBudgetGroups lists the active groups containing a day.
// @Summary     Get current budget groups
// @Tags        budget-groups
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Day (YYYY-MM-DD, default today)"
// @Success     200 {array} models.BudgetGroup "Current groups"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget-groups/current [get]
func (h *BudgetGroupHandler) GetCurrentBudgetGroups(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	asOf, err := queryDate(c, "as_of")
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.groupService.GetCurrentBudgetGroups(c.Request.Context(), userID, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_groups": groups})
}

// GetBudgetGroupSummary aggregates one group.
// @Summary     Get budget group summary
// @Description Totals, per-budget performance and a category breakdown of one group
// @Tags        budget-groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} services.GroupSummary "Group summary"
// @Failure     400 {object} ErrorResponse "Invalid group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /budget-groups/{id}/summary [get]
func (h *BudgetGroupHandler) GetBudgetGroupSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.groupService.GetBudgetGroupSummary(c.Request.Context(), userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetUserGroupsSummary aggregates every group current on a day.
// @Summary     Get budget groups overview
// @Tags        budget-groups
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Day (YYYY-MM-DD, default today)"
// @Success     200 {object} services.GroupsSummary "Groups overview"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget-groups/summary [get]
func (h *BudgetGroupHandler) GetUserGroupsSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	asOf, err := queryDate(c, "as_of")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.groupService.GetUserGroupsSummary(c.Request.Context(), userID, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GenerateBudgets creates budgets for the categories of a group.
// @Summary     Generate group budgets
// @Description Create one budget per category in scope. Categories that already have a budget in the group are skipped.
// @Tags        budget-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Group ID"
// @Param       request body GenerateBudgetsRequest true "Generation options"
// @Success     200 {object} map[string]int "Number of budgets created"
// @Failure     400 {object} ErrorResponse "Invalid input or inactive group"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /budget-groups/{id}/generate [post]
func (h *BudgetGroupHandler) GenerateBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateBudgetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	created, err := h.groupService.GenerateBudgets(c.Request.Context(), userID, groupID, req.options())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "GENERATE_BUDGETS", "budget_group", groupID, c.ClientIP(),
		map[string]any{"scope": req.Scope, "default_amount": req.DefaultAmount.String(), "created": created})

	c.JSON(http.StatusOK, gin.H{"created": created})
}

// BulkUpdateAmounts changes the amounts of several budgets of a group.
// @Summary     Bulk update budget amounts
// @Description Items match a budget by budget_id, or by category_id. Unmatched items and negative amounts are skipped.
// @Tags        budget-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Group ID"
// @Param       request body BulkUpdateRequest true "Amount changes"
// @Success     200 {object} map[string]int "Number of budgets updated"
// @Failure     400 {object} ErrorResponse "Invalid input or inactive group"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /budget-groups/{id}/amounts [put]
func (h *BudgetGroupHandler) BulkUpdateAmounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	updated, err := h.groupService.BulkUpdateAmounts(c.Request.Context(), userID, groupID, req.Updates)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "BULK_UPDATE_AMOUNTS", "budget_group", groupID, c.ClientIP(),
		map[string]any{"requested": len(req.Updates), "updated": updated})

	c.JSON(http.StatusOK, gin.H{"updated": updated, "requested": len(req.Updates)})
}

// ValidateGroupPeriod checks a period against the user's active groups.
// @Summary     Validate a group period
// @Tags        budget-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ValidatePeriodRequest true "Period to check"
// @Success     200 {object} services.PeriodCheck "Validation result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget-groups/validate-period [post]
func (h *BudgetGroupHandler) ValidateGroupPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ValidatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var excludeID string
	if req.ExcludeID != nil {
		excludeID = *req.ExcludeID
	}

	check, err := h.groupService.ValidateGroupPeriod(c.Request.Context(), userID, period.Closed(start, end), excludeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// ExportBudgetGroup downloads a group summary as a spreadsheet.
// @Summary     Export budget group
// @Tags        budget-groups
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce     text/csv
// @Security    BearerAuth
// @Param       id     path  string true  "Group ID"
// @Param       format query string false "csv or xlsx (default xlsx)"
// @Success     200 {file} file "Report"
// @Failure     400 {object} ErrorResponse "Invalid group ID or format"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /budget-groups/{id}/export [get]
func (h *BudgetGroupHandler) ExportBudgetGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.groupService.GetBudgetGroupSummary(c.Request.Context(), userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, summary, format); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename(summary, format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// PlanHandler handles monthly budget plans.
type PlanHandler struct {
	planService  services.MonthlyPlanServicer
	auditService services.AuditServicer
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService services.MonthlyPlanServicer, auditService services.AuditServicer) *PlanHandler {
	return &PlanHandler{planService: planService, auditService: auditService}
}

// CreatePlanRequest represents the request payload for a new monthly plan.
type CreatePlanRequest struct {
	Year        int                       `json:"year" binding:"required,gte=2000,lte=2100"`
	Month       int                       `json:"month" binding:"required,gte=1,lte=12"`
	Name        string                    `json:"name" binding:"max=100"`
	Currency    string                    `json:"currency" binding:"required,iso4217"`
	Allocations []services.PlanAllocation `json:"allocations" binding:"required,min=1,dive"`
}

// UpdatePlanRequest represents changes to an existing monthly plan.
// Allocations are upserted by category.
type UpdatePlanRequest struct {
	Name        string                    `json:"name" binding:"max=100"`
	Currency    string                    `json:"currency" binding:"omitempty,iso4217"`
	Allocations []services.PlanAllocation `json:"allocations" binding:"omitempty,dive"`
}

func planMonth(c *gin.Context) (int, time.Month, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid month")
	}
	return year, time.Month(month), nil
}

func planResourceID(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// CreatePlan creates the budgets of a month's plan.
// @Summary     Create a monthly plan
// @Description Create one monthly budget per category allocation
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePlanRequest true "Plan details"
// @Success     201 {object} services.MonthlyPlan "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Plan already exists or overlaps a budget"
// @Router      /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, services.MonthlyPlanInput{
		Year:        req.Year,
		Month:       time.Month(req.Month),
		Name:        req.Name,
		Currency:    req.Currency,
		Allocations: req.Allocations,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_PLAN", "budget_plan", planResourceID(req.Year, time.Month(req.Month)), c.ClientIP(),
		map[string]any{"name": plan.Name, "allocations": len(req.Allocations), "total": plan.TotalBudgeted.String()})

	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

// ListPlans lists the user's monthly plans, newest first.
// @Summary     List monthly plans
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Only plans of this year"
// @Success     200 {array} services.MonthlyPlan "Plans"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var year *int
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be a number"))
			return
		}
		year = &y
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetPlan returns one month's plan with budget performance.
// @Summary     Get monthly plan
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} services.MonthlyPlan "Plan"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{year}/{month} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := planMonth(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// UpdatePlan renames a plan, changes its currency, or upserts allocations.
// @Summary     Update monthly plan
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year    path int               true "Year"
// @Param       month   path int               true "Month (1-12)"
// @Param       request body UpdatePlanRequest true "Plan changes"
// @Success     200 {object} services.MonthlyPlan "Updated plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{year}/{month} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := planMonth(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, services.MonthlyPlanInput{
		Year:        year,
		Month:       month,
		Name:        req.Name,
		Currency:    req.Currency,
		Allocations: req.Allocations,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_PLAN", "budget_plan", planResourceID(year, month), c.ClientIP(),
		map[string]any{"name": plan.Name, "currency": plan.Currency, "allocations": len(req.Allocations)})

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// DeletePlan removes every budget of a month's plan.
// @Summary     Delete monthly plan
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} map[string]int "Number of budgets deleted"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{year}/{month} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := planMonth(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.planService.DeletePlan(c.Request.Context(), userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_PLAN", "budget_plan", planResourceID(year, month), c.ClientIP(),
		map[string]any{"deleted": deleted})

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

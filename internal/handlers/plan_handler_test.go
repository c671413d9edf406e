package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

type mockPlanService struct {
	createPlanFn func(userID string, in services.MonthlyPlanInput) (*services.MonthlyPlan, error)
	listPlansFn  func(userID string, year *int) ([]services.MonthlyPlan, error)
	getPlanFn    func(userID string, year int, month time.Month) (*services.MonthlyPlan, error)
	updatePlanFn func(userID string, in services.MonthlyPlanInput) (*services.MonthlyPlan, error)
	deletePlanFn func(userID string, year int, month time.Month) (int, error)
}

func (m *mockPlanService) CreatePlan(_ context.Context, userID string, in services.MonthlyPlanInput) (*services.MonthlyPlan, error) {
	if m.createPlanFn != nil {
		return m.createPlanFn(userID, in)
	}
	return &services.MonthlyPlan{}, nil
}

func (m *mockPlanService) ListPlans(_ context.Context, userID string, year *int) ([]services.MonthlyPlan, error) {
	if m.listPlansFn != nil {
		return m.listPlansFn(userID, year)
	}
	return nil, nil
}

func (m *mockPlanService) GetPlan(_ context.Context, userID string, year int, month time.Month) (*services.MonthlyPlan, error) {
	if m.getPlanFn != nil {
		return m.getPlanFn(userID, year, month)
	}
	return &services.MonthlyPlan{}, nil
}

func (m *mockPlanService) UpdatePlan(_ context.Context, userID string, in services.MonthlyPlanInput) (*services.MonthlyPlan, error) {
	if m.updatePlanFn != nil {
		return m.updatePlanFn(userID, in)
	}
	return &services.MonthlyPlan{}, nil
}

func (m *mockPlanService) DeletePlan(_ context.Context, userID string, year int, month time.Month) (int, error) {
	if m.deletePlanFn != nil {
		return m.deletePlanFn(userID, year, month)
	}
	return 0, nil
}

func setupPlanRouter(handler *PlanHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/plans", injectUserID(testUserID))
	g.POST("", handler.CreatePlan)
	g.GET("", handler.ListPlans)
	g.GET("/:year/:month", handler.GetPlan)
	g.PUT("/:year/:month", handler.UpdatePlan)
	g.DELETE("/:year/:month", handler.DeletePlan)
	return r
}

func aprilPlan() *services.MonthlyPlan {
	return &services.MonthlyPlan{
		Year: 2026, Month: 4, Name: "April 2026 Budget Plan", Currency: "USD",
		TotalBudgeted: decimal.NewFromInt(1300), Status: models.BudgetStatusOnTrack,
	}
}

func TestPlanHandler_CreatePlan(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		var got services.MonthlyPlanInput
		audit := &mockAuditService{}
		svc := &mockPlanService{
			createPlanFn: func(_ string, in services.MonthlyPlanInput) (*services.MonthlyPlan, error) {
				got = in
				return aprilPlan(), nil
			},
		}
		r := setupPlanRouter(NewPlanHandler(svc, audit))

		rec := doRequest(r, http.MethodPost, "/plans",
			`{"year":2026,"month":4,"currency":"USD","allocations":[{"category_id":"`+otherID+`","amount":"1200"},{"category_id":"`+missingID+`","amount":100,"alert_threshold":90}]}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, time.April, got.Month)
		require.Len(t, got.Allocations, 2)
		assert.Equal(t, "1200", got.Allocations[0].Amount.String())
		require.NotNil(t, got.Allocations[1].AlertThreshold)
		assert.Equal(t, "90", got.Allocations[1].AlertThreshold.String())
		require.Len(t, audit.entries, 1)
		assert.Equal(t, "2026-04", audit.entries[0].resourceID)
	})

	for name, body := range map[string]string{
		"month 13":       `{"year":2026,"month":13,"currency":"USD","allocations":[{"category_id":"x","amount":1}]}`,
		"no allocations": `{"year":2026,"month":4,"currency":"USD","allocations":[]}`,
		"no currency":    `{"year":2026,"month":4,"allocations":[{"category_id":"x","amount":1}]}`,
	} {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			r := setupPlanRouter(NewPlanHandler(&mockPlanService{}, &mockAuditService{}))

			rec := doRequest(r, http.MethodPost, "/plans", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("returns 409 when the month has a plan", func(t *testing.T) {
		svc := &mockPlanService{
			createPlanFn: func(string, services.MonthlyPlanInput) (*services.MonthlyPlan, error) {
				return nil, apperrors.ErrPlanExists
			},
		}
		r := setupPlanRouter(NewPlanHandler(svc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/plans",
			`{"year":2026,"month":4,"currency":"USD","allocations":[{"category_id":"`+otherID+`","amount":1}]}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assertErrorCode(t, parseJSON(t, rec), "PLAN_EXISTS")
	})
}

func TestPlanHandler_ListPlans(t *testing.T) {
	var gotYear *int
	svc := &mockPlanService{
		listPlansFn: func(_ string, year *int) ([]services.MonthlyPlan, error) {
			gotYear = year
			return []services.MonthlyPlan{*aprilPlan()}, nil
		},
	}
	r := setupPlanRouter(NewPlanHandler(svc, &mockAuditService{}))

	rec := doRequest(r, http.MethodGet, "/plans?year=2026", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotYear)
	assert.Equal(t, 2026, *gotYear)
	assert.Len(t, parseJSON(t, rec)["plans"], 1)

	rec = doRequest(r, http.MethodGet, "/plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotYear)

	rec = doRequest(r, http.MethodGet, "/plans?year=next", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHandler_MonthRoutes(t *testing.T) {
	svc := &mockPlanService{
		getPlanFn: func(_ string, year int, month time.Month) (*services.MonthlyPlan, error) {
			if month != time.April {
				return nil, apperrors.ErrPlanNotFound
			}
			return aprilPlan(), nil
		},
		updatePlanFn: func(_ string, in services.MonthlyPlanInput) (*services.MonthlyPlan, error) {
			p := aprilPlan()
			p.Name = in.Name
			p.Currency = in.Currency
			return p, nil
		},
		deletePlanFn: func(string, int, time.Month) (int, error) { return 3, nil },
	}
	audit := &mockAuditService{}
	r := setupPlanRouter(NewPlanHandler(svc, audit))

	t.Run("get", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/plans/2026/4", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1300", parseJSON(t, rec)["plan"].(map[string]any)["total_budgeted"])
	})

	t.Run("get missing month", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/plans/2026/5", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assertErrorCode(t, parseJSON(t, rec), "PLAN_NOT_FOUND")
	})

	t.Run("invalid month", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/plans/2026/0", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := doRequest(r, http.MethodPut, "/plans/2026/4", `{"name":"Lean April","currency":"EUR"}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		plan := parseJSON(t, rec)["plan"].(map[string]any)
		assert.Equal(t, "Lean April", plan["name"])
		assert.Equal(t, "EUR", plan["currency"])
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(r, http.MethodDelete, "/plans/2026/4", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 3, parseJSON(t, rec)["deleted"])
		assert.Contains(t, audit.actions(), "DELETE_PLAN")
	})
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pennywise/internal/services"
)

// CurrencyHandler exposes the currency registry and exchange rates.
type CurrencyHandler struct {
	currencyService services.CurrencyServicer
	auditService    services.AuditServicer
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyService services.CurrencyServicer, auditService services.AuditServicer) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService, auditService: auditService}
}

// UpsertRateRequest sets the rate from one currency to another on a day.
type UpsertRateRequest struct {
	FromCurrency string           `json:"from_currency" binding:"required,iso4217"`
	ToCurrency   string           `json:"to_currency" binding:"required,iso4217,nefield=FromCurrency"`
	Rate         *decimal.Decimal `json:"rate" binding:"required,gt=0"`
	AsOf         string           `json:"as_of" binding:"required,datetime=2006-01-02"`
}

// ListCurrencies returns the active currencies.
// @Summary     List currencies
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Currency "Active currencies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /currencies [get]
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

// UpsertRate records an exchange rate.
// @Summary     Set exchange rate
// @Description Create or replace the rate for a currency pair on a day
// @Tags        currencies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertRateRequest true "Exchange rate"
// @Success     200 {object} models.ExchangeRate "Stored rate"
// @Failure     400 {object} ErrorResponse "Invalid input or inactive currency"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /currencies/rates [put]
func (h *CurrencyHandler) UpsertRate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	asOf, err := parseDate("as_of", req.AsOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rate, err := h.currencyService.UpsertRate(c.Request.Context(), req.FromCurrency, req.ToCurrency, *req.Rate, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPSERT_RATE", "exchange_rate", rate.ID, c.ClientIP(),
		map[string]any{"pair": strings.Join([]string{rate.FromCurrency, rate.ToCurrency}, "/"), "rate": rate.Rate.String(), "as_of": req.AsOf})

	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

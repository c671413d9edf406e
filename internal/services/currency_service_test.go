package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/models"
	"pennywise/internal/testutil"
)

func TestListCurrencies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewCurrencyService(db)

	currencies, err := svc.ListCurrencies(context.Background())
	testutil.AssertNoError(t, err)

	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, codes)
}

func TestUpsertRate(t *testing.T) {
	ctx := context.Background()
	day := testutil.Date(2025, time.March, 1)

	t.Run("replaces_same_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewCurrencyService(db)

		_, err := svc.UpsertRate(ctx, "eur", "usd", d("1.08"), day)
		testutil.AssertNoError(t, err)
		_, err = svc.UpsertRate(ctx, "EUR", "USD", d("1.10"), day.Add(5*time.Hour))
		testutil.AssertNoError(t, err)

		var rates []models.ExchangeRate
		require.NoError(t, db.Find(&rates).Error)
		require.Len(t, rates, 1)
		assert.Equal(t, "1.1", rates[0].Rate.String())
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewCurrencyService(db)

		_, err := svc.UpsertRate(ctx, "EUR", "USD", d("0"), day)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.UpsertRate(ctx, "EUR", "EUR", d("1"), day)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.UpsertRate(ctx, "EUR", "XTS", d("1"), day)
		testutil.AssertAppError(t, err, "CURRENCY_INACTIVE")
	})
}

func TestConvert(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewCurrencyService(db)

	_, err := svc.UpsertRate(ctx, "EUR", "USD", d("1.05"), testutil.Date(2025, time.January, 1))
	testutil.AssertNoError(t, err)
	_, err = svc.UpsertRate(ctx, "EUR", "USD", d("1.10"), testutil.Date(2025, time.March, 1))
	testutil.AssertNoError(t, err)
	_, err = svc.UpsertRate(ctx, "GBP", "USD", d("1.25"), testutil.Date(2025, time.January, 1))
	testutil.AssertNoError(t, err)

	t.Run("same_currency", func(t *testing.T) {
		amount, rate, err := svc.Convert(ctx, d("12.345"), "usd", "USD", time.Now())
		testutil.AssertNoError(t, err)
		assert.Equal(t, "12.35", amount.String())
		assert.Equal(t, "1", rate.String())
	})

	t.Run("latest_rate_on_or_before", func(t *testing.T) {
		amount, rate, err := svc.Convert(ctx, d("100"), "EUR", "USD", testutil.Date(2025, time.February, 15))
		testutil.AssertNoError(t, err)
		assert.Equal(t, "105", amount.String())
		assert.Equal(t, "1.05", rate.String())

		amount, _, err = svc.Convert(ctx, d("100"), "EUR", "USD", testutil.Date(2025, time.March, 1))
		testutil.AssertNoError(t, err)
		assert.Equal(t, "110", amount.String())
	})

	t.Run("inverse_pair", func(t *testing.T) {
		amount, rate, err := svc.Convert(ctx, d("10"), "USD", "GBP", testutil.Date(2025, time.June, 1))
		testutil.AssertNoError(t, err)
		assert.Equal(t, "0.8", rate.String())
		assert.Equal(t, "8", amount.String())
	})

	t.Run("no_rate", func(t *testing.T) {
		_, _, err := svc.Convert(ctx, d("10"), "EUR", "USD", testutil.Date(2024, time.December, 31))
		testutil.AssertAppError(t, err, "RATE_NOT_AVAILABLE")
	})
}

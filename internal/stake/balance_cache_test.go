package stake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stakebot/internal/models"
)

type countingFetcher struct {
	calls int
	err   error
}

func (f *countingFetcher) GetBalances(ctx context.Context) (models.Balances, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return models.Balances{{
		Available: models.Amount{Amount: decimal.NewFromInt(int64(f.calls)), Currency: models.CurrencyUSDT},
	}}, nil
}

func TestCachedBalancesReusesWithinTTL(t *testing.T) {
	fetcher := &countingFetcher{}
	cached := NewCachedBalances(fetcher, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := cached.GetBalances(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fetcher.calls)

	cached.Invalidate()
	balances, err := cached.GetBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)

	amount, ok := balances.Available(models.CurrencyUSDT)
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromInt(2)))
}

func TestCachedBalancesDisabled(t *testing.T) {
	fetcher := &countingFetcher{}
	cached := NewCachedBalances(fetcher, 0)

	for i := 0; i < 3; i++ {
		_, err := cached.GetBalances(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fetcher.calls)
}

func TestCachedBalancesDoesNotCacheErrors(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("boom")}
	cached := NewCachedBalances(fetcher, time.Minute)

	_, err := cached.GetBalances(context.Background())
	require.Error(t, err)

	fetcher.err = nil
	_, err = cached.GetBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCachedBalancesSettleAdjustsCachedEntry(t *testing.T) {
	fetcher := &countingFetcher{}
	cached := NewCachedBalances(fetcher, time.Minute)

	// Nothing cached yet: settling is a no-op
	cached.Settle(models.CurrencyUSDT, decimal.NewFromInt(5))

	_, err := cached.GetBalances(context.Background())
	require.NoError(t, err)

	cached.Settle(models.CurrencyUSDT, decimal.RequireFromString("0.5"))
	cached.Settle(models.CurrencyUSDT, decimal.RequireFromString("-0.2"))
	cached.Settle(models.CurrencyBTC, decimal.NewFromInt(100))

	balances, err := cached.GetBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "settling must not force a refetch")

	amount, ok := balances.Available(models.CurrencyUSDT)
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.RequireFromString("1.3")), "got %s", amount)
}

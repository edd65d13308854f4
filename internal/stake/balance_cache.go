package stake

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/yourusername/stakebot/internal/models"
)

const balancesKey = "balances"

// BalanceFetcher reads account balances
type BalanceFetcher interface {
	GetBalances(ctx context.Context) (models.Balances, error)
}

// CachedBalances reuses a fetched balance list for a short TTL so the loop can
// refresh after every bet without a round-trip per tick
type CachedBalances struct {
	fetcher BalanceFetcher
	cache   *cache.Cache
	ttl     time.Duration
}

// NewCachedBalances creates a balance cache. A ttl of zero disables caching.
func NewCachedBalances(fetcher BalanceFetcher, ttl time.Duration) *CachedBalances {
	return &CachedBalances{
		fetcher: fetcher,
		cache:   cache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// GetBalances returns cached balances or fetches fresh ones
func (c *CachedBalances) GetBalances(ctx context.Context) (models.Balances, error) {
	if c.ttl > 0 {
		if cached, found := c.cache.Get(balancesKey); found {
			if balances, ok := cached.(models.Balances); ok {
				return balances, nil
			}
		}
	}

	balances, err := c.fetcher.GetBalances(ctx)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 {
		c.cache.Set(balancesKey, balances, c.ttl)
	}
	return balances, nil
}

// Invalidate drops the cached balances
func (c *CachedBalances) Invalidate() {
	c.cache.Delete(balancesKey)
}

// Settle applies a settled bet's profit to the cached balance of currency so a
// cache hit reflects the bet. The entry keeps its original expiry.
func (c *CachedBalances) Settle(currency models.Currency, profit decimal.Decimal) {
	cached, expires, found := c.cache.GetWithExpiration(balancesKey)
	if !found {
		return
	}
	balances, ok := cached.(models.Balances)
	if !ok {
		return
	}

	ttl := time.Until(expires)
	if ttl <= 0 {
		c.Invalidate()
		return
	}

	updated := make(models.Balances, len(balances))
	copy(updated, balances)
	for i := range updated {
		if updated[i].Available.Currency == currency {
			updated[i].Available.Amount = updated[i].Available.Amount.Add(profit)
		}
	}
	c.cache.Set(balancesKey, updated, ttl)
}

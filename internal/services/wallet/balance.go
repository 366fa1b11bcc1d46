// Package wallet orchestrates balance state and mutating wallet operations.
package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vadiminshakov/walletctl/internal/domain"
	"github.com/vadiminshakov/walletctl/internal/transport"
)

const balancePath = "/wallet/balance"

// Dispatcher is the subset of the transport layer this package needs.
type Dispatcher interface {
	Do(ctx context.Context, req transport.Request) (json.RawMessage, error)
}

// BalanceCache holds the last-known per-asset balances. Concurrent refreshes
// collapse into a single outbound request; every caller receives the same
// outcome.
type BalanceCache struct {
	dispatcher Dispatcher
	logger     *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	snapshot domain.Balances
}

// NewBalanceCache creates an empty cache.
func NewBalanceCache(dispatcher Dispatcher, logger *zap.Logger) *BalanceCache {
	return &BalanceCache{
		dispatcher: dispatcher,
		logger:     logger,
		snapshot:   domain.Balances{},
	}
}

// Refresh fetches fresh balances. The mapping is replaced wholesale on
// success; on failure the previous snapshot stays visible and only the
// refresh callers see the error.
func (c *BalanceCache) Refresh(ctx context.Context) (domain.Balances, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		raw, err := c.dispatcher.Do(ctx, transport.Request{
			Method:       http.MethodGet,
			Path:         balancePath,
			RequiresAuth: true,
		})
		if err != nil {
			return nil, err
		}

		var entries []domain.AssetBalance
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, errors.Wrap(err, "decode balance response")
		}

		fresh := make(domain.Balances, len(entries))
		for _, e := range entries {
			fresh[e.Asset] = e.Amount
		}

		c.mu.Lock()
		c.snapshot = fresh
		c.mu.Unlock()

		c.logger.Debug("balances refreshed", zap.Int("assets", len(fresh)))

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Balances).Clone(), nil
}

// Read returns the last-known snapshot, possibly stale.
func (c *BalanceCache) Read() domain.Balances {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// AssetBalance fetches the balance of a single asset without touching the
// cached snapshot.
func (c *BalanceCache) AssetBalance(ctx context.Context, asset string) (domain.AssetBalance, error) {
	q := url.Values{}
	q.Set("asset", asset)

	raw, err := c.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         balancePath,
		Query:        q,
		RequiresAuth: true,
	})
	if err != nil {
		return domain.AssetBalance{}, err
	}

	var entries []domain.AssetBalance
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.AssetBalance{}, errors.Wrap(err, "decode balance response")
	}
	if len(entries) == 0 {
		return domain.AssetBalance{Asset: asset}, nil
	}
	return entries[0], nil
}

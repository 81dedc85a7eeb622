package currency

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/richxcame/invoice-insights/pkg/logger"
)

// CacheOptions configures a RateCache.
type CacheOptions struct {
	BaseCurrency string
	TTL          time.Duration
	// ServeStale returns the previous snapshot when a refresh fails.
	ServeStale bool
}

// RateCache owns the current rate snapshot. Readers always see one complete
// snapshot; refreshes replace it atomically and concurrent refreshes share a
// single provider call.
type RateCache struct {
	provider RateProvider
	store    SnapshotStore
	opts     CacheOptions
	now      func() time.Time

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// NewRateCache creates a cache. store may be nil.
func NewRateCache(provider RateProvider, store SnapshotStore, opts CacheOptions) *RateCache {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = CurrencyUSD
	}
	opts.BaseCurrency = strings.ToUpper(opts.BaseCurrency)
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	return &RateCache{
		provider: provider,
		store:    store,
		opts:     opts,
		now:      time.Now,
	}
}

// BaseCurrency returns the currency every rate is expressed against.
func (c *RateCache) BaseCurrency() string {
	return c.opts.BaseCurrency
}

// Snapshot returns the current snapshot, refreshing it first when it is
// missing or older than the validity window.
func (c *RateCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cur := c.current.Load(); cur.FreshAt(c.now(), c.opts.TTL) {
		return cur, nil
	}

	// Detached so one caller going away does not fail everyone waiting.
	refreshCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		return c.refresh(refreshCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// GetRates returns the raw code→rate map of the current snapshot.
func (c *RateCache) GetRates(ctx context.Context) (map[string]string, error) {
	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Rates(), nil
}

// GetRate returns the rate for code. ok is false for unknown codes.
func (c *RateCache) GetRate(ctx context.Context, code string) (rate decimal.Decimal, ok bool, err error) {
	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	rate, ok = snapshot.Rate(code)
	return rate, ok, nil
}

func (c *RateCache) refresh(ctx context.Context) (*Snapshot, error) {
	previous := c.current.Load()
	if previous.FreshAt(c.now(), c.opts.TTL) {
		return previous, nil
	}

	if snapshot := c.loadShared(ctx); snapshot != nil {
		c.current.Store(snapshot)
		recordRefresh(refreshStoreHit)
		recordSnapshot(snapshot)
		return snapshot, nil
	}

	snapshot, err := c.fetch(ctx)
	if err != nil {
		if c.opts.ServeStale && previous != nil {
			recordRefresh(refreshStale)
			logger.WithContext(ctx).Warn("serving stale exchange rates",
				zap.Time("fetched_at", previous.FetchedAt),
				zap.Error(err),
			)
			return previous, nil
		}
		recordRefresh(refreshFailure)
		logger.WithContext(ctx).Warn("exchange rate refresh failed", zap.Error(err))
		return nil, &RateProviderUnavailableError{Err: err}
	}

	c.current.Store(snapshot)
	recordRefresh(refreshSuccess)
	recordSnapshot(snapshot)
	logger.WithContext(ctx).Info("exchange rates refreshed",
		zap.String("base", snapshot.Base),
		zap.String("provider_date", snapshot.Date),
		zap.Int("currencies", snapshot.Len()),
	)

	if c.store != nil {
		if err := c.store.Save(ctx, snapshot); err != nil {
			logger.WithContext(ctx).Warn("failed to share exchange rate snapshot", zap.Error(err))
		}
	}

	return snapshot, nil
}

func (c *RateCache) loadShared(ctx context.Context) *Snapshot {
	if c.store == nil {
		return nil
	}

	snapshot, err := c.store.Load(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to load shared exchange rate snapshot", zap.Error(err))
		return nil
	}
	if snapshot == nil || snapshot.Base != c.opts.BaseCurrency || !snapshot.FreshAt(c.now(), c.opts.TTL) {
		return nil
	}
	return snapshot
}

func (c *RateCache) fetch(ctx context.Context) (*Snapshot, error) {
	resp, err := c.provider.FetchLatest(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Rates) == 0 {
		return nil, errors.New("provider returned no rates")
	}

	base := resp.Base
	if base == "" {
		base = c.opts.BaseCurrency
	}

	snapshot := NewSnapshot(base, resp.Date, resp.Rates, c.now())
	if snapshot.Base == c.opts.BaseCurrency {
		return snapshot, nil
	}

	rebased, ok := snapshot.Rebase(c.opts.BaseCurrency)
	if !ok {
		return nil, errors.New("provider rates do not include base currency " + c.opts.BaseCurrency)
	}
	logger.WithContext(ctx).Debug("rebased provider rates",
		zap.String("provider_base", snapshot.Base),
		zap.String("base", c.opts.BaseCurrency),
	)
	return rebased, nil
}

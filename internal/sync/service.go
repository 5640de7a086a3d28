// Package sync pulls live usage from every enabled provider, normalizes it,
// prices it, and caches the result in storage.
package sync

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/penwyp/go-cost-tracker/internal/core/calculator"
	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/core/pricing"
	"github.com/penwyp/go-cost-tracker/internal/provider"
	"github.com/penwyp/go-cost-tracker/internal/storage"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

// Result is the outcome of one sync pass. Usage and Errors are keyed by
// provider name, so completion order of the fan-out does not matter.
type Result struct {
	Usage    map[string][]model.NormalizedUsage `json:"usage"`
	Errors   map[string]string                  `json:"errors,omitempty"`
	Costs    calculator.BatchCostResult         `json:"costs"`
	SyncedAt time.Time                          `json:"syncedAt"`
}

// Service coordinates provider adapters, pricing, and the usage cache.
type Service struct {
	registry *provider.Registry
	storage  storage.Store
	pricing  pricing.Provider
}

// NewService wires a sync service from its collaborators.
func NewService(registry *provider.Registry, st storage.Store, pricingProvider pricing.Provider) *Service {
	return &Service{
		registry: registry,
		storage:  st,
		pricing:  pricingProvider,
	}
}

// SyncUsage fetches usage from every enabled config concurrently. One
// provider failing does not abort the others; its failure lands in
// Result.Errors under the provider name. The flattened usage and the sync
// timestamp are persisted before returning.
func (s *Service) SyncUsage(ctx context.Context, configs []model.ProviderConfig, from, to time.Time) *Result {
	result := &Result{
		Usage:  make(map[string][]model.NormalizedUsage),
		Errors: make(map[string]string),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, cfg := range configs {
		cfg := cfg
		if !cfg.IsEnabled {
			continue
		}
		g.Go(func() error {
			adapter, err := s.registry.Get(cfg.Provider)
			if err != nil {
				mu.Lock()
				result.Errors[cfg.Provider] = err.Error()
				mu.Unlock()
				return nil
			}

			usage, err := adapter.FetchUsage(ctx, cfg, from, to)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[cfg.Provider] = err.Error()
				return nil
			}
			result.Usage[cfg.Provider] = usage
			return nil
		})
	}
	_ = g.Wait()

	result.SyncedAt = util.GetTimeProvider().Now()
	s.persist(result, configs)
	s.price(ctx, result)
	return result
}

// persist caches the flattened usage, the credential configs, and the sync
// timestamp. Storage failures degrade to log lines.
func (s *Service) persist(result *Result, configs []model.ProviderConfig) {
	var flattened []model.NormalizedUsage
	for _, records := range result.Usage {
		flattened = append(flattened, records...)
	}
	if err := s.storage.Set(storage.KeyUsage, flattened); err != nil {
		util.LogWarnf("Failed to cache usage records: %v", err)
	}
	if err := s.storage.Set(storage.KeyConfig, configs); err != nil {
		util.LogWarnf("Failed to cache provider configs: %v", err)
	}
	if err := s.storage.Set(storage.KeyLastSync, result.SyncedAt.Format(time.RFC3339)); err != nil {
		util.LogWarnf("Failed to record sync timestamp: %v", err)
	}
}

// price attaches batch token costs across every fetched record. A pricing
// outage leaves costs at zero rather than failing the sync.
func (s *Service) price(ctx context.Context, result *Result) {
	var flattened []model.NormalizedUsage
	for _, records := range result.Usage {
		flattened = append(flattened, records...)
	}
	if len(flattened) == 0 {
		result.Costs = calculator.BatchCostResult{ByModel: map[string]float64{}}
		return
	}

	pricings, err := s.pricing.GetAllPricings(ctx)
	if err != nil {
		util.LogWarnf("Pricing unavailable, sync costs left at zero: %v", err)
		result.Costs = calculator.BatchCostResult{ByModel: map[string]float64{}}
		return
	}
	result.Costs = calculator.CalculateBatchCosts(flattened, pricings)
}

// CachedUsage returns the usage records from the last successful sync.
func (s *Service) CachedUsage() ([]model.NormalizedUsage, error) {
	var usage []model.NormalizedUsage
	if _, err := s.storage.Get(storage.KeyUsage, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// LastSync returns the timestamp of the last sync, zero when none happened.
func (s *Service) LastSync() time.Time {
	var stamp string
	found, err := s.storage.Get(storage.KeyLastSync, &stamp)
	if err != nil || !found {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TestConnections health-checks every config concurrently, keyed by provider
// name. A nil map value means the probe succeeded.
func (s *Service) TestConnections(ctx context.Context, configs []model.ProviderConfig) map[string]error {
	results := make(map[string]error, len(configs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, cfg := range configs {
		cfg := cfg
		wg.Add(1)
		go func() {
			defer wg.Done()

			adapter, err := s.registry.Get(cfg.Provider)
			if err == nil {
				err = adapter.HealthCheck(ctx, cfg)
			}
			mu.Lock()
			results[cfg.Provider] = err
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

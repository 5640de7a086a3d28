package pricing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

const cacheFileName = "pricing.json"

// cacheEnvelope is what lands on disk: the rate cards plus fetch metadata.
type cacheEnvelope struct {
	Source    string                        `json:"source"`
	FetchedAt time.Time                     `json:"fetchedAt"`
	Pricings  map[string]model.ModelPricing `json:"pricings"`
}

// CachedProvider wraps a remote Provider with a disk cache so previously
// fetched rate cards survive restarts and offline runs.
type CachedProvider struct {
	base        Provider
	cachePath   string
	offlineMode bool
	mu          sync.RWMutex
	loaded      map[string]model.ModelPricing
}

// NewCachedProvider creates a caching wrapper storing rate cards under cacheDir.
func NewCachedProvider(base Provider, cacheDir string, offlineMode bool) (*CachedProvider, error) {
	expanded := util.ExpandPath(cacheDir)
	if err := os.MkdirAll(expanded, 0755); err != nil {
		return nil, fmt.Errorf("create pricing cache directory: %w", err)
	}
	return &CachedProvider{
		base:        base,
		cachePath:   filepath.Join(expanded, cacheFileName),
		offlineMode: offlineMode,
	}, nil
}

// GetPricing returns the rate card for a model id, consulting the cache when
// the remote source is unavailable or offline mode is on.
func (p *CachedProvider) GetPricing(ctx context.Context, modelID string) (model.ModelPricing, error) {
	all, err := p.GetAllPricings(ctx)
	if err != nil {
		return model.ModelPricing{}, err
	}
	if pricing, ok := all[modelID]; ok {
		return pricing, nil
	}
	return model.ModelPricing{}, fmt.Errorf("%w: %s", ErrPricingNotFound, modelID)
}

// GetAllPricings returns all rate cards, refreshing from the base provider
// when possible and falling back to the disk cache otherwise.
func (p *CachedProvider) GetAllPricings(ctx context.Context) (map[string]model.ModelPricing, error) {
	p.mu.RLock()
	if p.loaded != nil {
		cached := p.loaded
		p.mu.RUnlock()
		return cached, nil
	}
	p.mu.RUnlock()

	if !p.offlineMode {
		if all, err := p.base.GetAllPricings(ctx); err == nil {
			p.storeCache(all)
			return all, nil
		} else {
			util.LogWarnf("Remote pricing fetch failed, trying disk cache: %v", err)
		}
	}

	all, err := p.loadCache()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	return all, nil
}

// RefreshPricing refreshes from the base provider and rewrites the cache.
func (p *CachedProvider) RefreshPricing(ctx context.Context) error {
	if err := p.base.RefreshPricing(ctx); err != nil {
		return err
	}
	all, err := p.base.GetAllPricings(ctx)
	if err != nil {
		return err
	}
	p.storeCache(all)
	return nil
}

// GetProviderName returns the wrapped provider's name with a cache marker
func (p *CachedProvider) GetProviderName() string {
	return p.base.GetProviderName() + "+cache"
}

func (p *CachedProvider) storeCache(all map[string]model.ModelPricing) {
	p.mu.Lock()
	p.loaded = all
	p.mu.Unlock()

	envelope := cacheEnvelope{
		Source:    p.base.GetProviderName(),
		FetchedAt: time.Now(),
		Pricings:  all,
	}
	data, err := sonic.Marshal(envelope)
	if err != nil {
		util.LogWarnf("Failed to encode pricing cache: %v", err)
		return
	}
	if err := os.WriteFile(p.cachePath, data, 0644); err != nil {
		util.LogWarnf("Failed to write pricing cache: %v", err)
	}
}

func (p *CachedProvider) loadCache() (map[string]model.ModelPricing, error) {
	data, err := os.ReadFile(p.cachePath)
	if err != nil {
		return nil, err
	}
	var envelope cacheEnvelope
	if err := sonic.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.loaded = envelope.Pricings
	p.mu.Unlock()

	util.LogDebugf("Loaded %d rate cards from pricing cache (fetched %s)",
		len(envelope.Pricings), envelope.FetchedAt.Format("2006-01-02 15:04:05"))
	return envelope.Pricings, nil
}

package pricing

import (
	"fmt"
)

// CreateProvider creates a pricing provider based on configuration. Remote
// sources and offline mode get the disk-cache wrapper; the built-in table
// needs none.
func CreateProvider(cfg *SourceConfig, cacheDir string) (Provider, error) {
	var base Provider

	switch cfg.PricingSource {
	case "default", "":
		base = NewDefaultProvider()
	case "litellm":
		base = NewLiteLLMProvider()
	default:
		return nil, fmt.Errorf("unknown pricing source: %s", cfg.PricingSource)
	}

	if cfg.PricingOfflineMode || cfg.PricingSource == "litellm" {
		cached, err := NewCachedProvider(base, cacheDir, cfg.PricingOfflineMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create pricing cache: %w", err)
		}
		return cached, nil
	}

	return base, nil
}

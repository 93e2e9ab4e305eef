package llm

import (
	"fmt"
	"os"

	"github.com/magroup/magnus/internal/config"
)

// NewProvider creates an LLM provider from the configuration. API keys are
// read from the environment: OPENAI_API_KEY for openai, AZURE_OPENAI_API_KEY
// for azure. When llm.requests_per_minute is set, the provider is wrapped
// with a client-side rate limiter.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	var provider Provider

	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		provider = NewOpenAIProvider(apiKey, cfg.Model)

	case config.ProviderAzure:
		apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_API_KEY environment variable is not set")
		}
		if cfg.AzureEndpoint == "" {
			return nil, fmt.Errorf("llm.azure_endpoint is not configured")
		}
		provider = NewAzureProvider(apiKey, cfg.AzureEndpoint, cfg.AzureDeployment, cfg.AzureAPIVersion)

	case config.ProviderOllama:
		host := cfg.OllamaHost
		if host == "" {
			host = "http://localhost:11434"
		}
		provider = NewOllamaProvider(host, cfg.Model)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		provider = NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}

	return provider, nil
}

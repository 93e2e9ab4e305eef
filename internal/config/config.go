package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MAGNUS_*). A double underscore in the
// variable name separates nesting levels: MAGNUS_LLM__MODEL -> llm.model,
// MAGNUS_AUTH__LOGIN_PASSWORD -> auth.login_password.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables.
	if err := k.Load(env.Provider("MAGNUS_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "MAGNUS_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validConnectors is the set of recognized connector values.
var validConnectors = map[ConnectorType]bool{
	ConnectorGoogleDrive: true,
	ConnectorDropbox:     true,
	ConnectorSharePoint:  true,
	ConnectorLocal:       true,
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderAzure:  true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Connector == "" {
		return fmt.Errorf("connector is required")
	}
	if !validConnectors[c.Connector] {
		return fmt.Errorf("invalid connector %q: must be one of gdrive, dropbox, sharepoint, local", c.Connector)
	}

	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q: must be one of openai, azure, ollama", c.LLM.Provider)
	}
	if c.LLM.Model == "" && c.LLM.Provider != ProviderAzure {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.Provider == ProviderAzure {
		if c.LLM.AzureEndpoint == "" {
			return fmt.Errorf("llm.azure_endpoint is required for the azure provider")
		}
		if c.LLM.AzureDeployment == "" {
			return fmt.Errorf("llm.azure_deployment is required for the azure provider")
		}
	}

	if c.Retrieval.MaxCandidates < 0 {
		return fmt.Errorf("retrieval.max_candidates must be non-negative")
	}
	if c.Retrieval.TotalBudget < 0 {
		return fmt.Errorf("retrieval.total_budget must be non-negative")
	}
	if c.Knowledge.CacheTTLMinutes < 0 {
		return fmt.Errorf("knowledge.cache_ttl_minutes must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Connector == ConnectorLocal && c.Local.Root == "" {
		return fmt.Errorf("local.root is required for the local connector")
	}

	return nil
}

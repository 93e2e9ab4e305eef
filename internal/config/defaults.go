package config

// DefaultConfig returns a Config with sensible defaults. Retrieval
// defaults mirror retrieval.DefaultOptions so the YAML file documents
// the effective values.
func DefaultConfig() *Config {
	return &Config{
		Connector: ConnectorLocal,
		LLM: LLMConfig{
			Provider:        ProviderOpenAI,
			Model:           "gpt-4o-mini",
			MaxTokens:       2000,
			Temperature:     0.7,
			AzureAPIVersion: "2024-02-15-preview",
			OllamaHost:      "http://localhost:11434",
		},
		Retrieval: RetrievalConfig{
			MaxCandidates:      8,
			FallbackCandidates: 6,
			SnippetMaxLen:      2000,
			Window:             1400,
			TotalBudget:        20000,
		},
		Knowledge: KnowledgeConfig{
			CacheTTLMinutes: 30,
		},
		Auth: AuthConfig{
			Username:          "MAG",
			SessionTTLMinutes: 480,
		},
		Server: ServerConfig{
			Port:    8080,
			DataDir: ".magnus",
		},
		GoogleDrive: GoogleDriveConfig{
			FolderName: "MAGnus Knowledge Base",
		},
		Dropbox: DropboxConfig{
			RootPath: "/knowledge-base",
		},
		Local: LocalConfig{
			Root:    "knowledge",
			Include: []string{"**/*.txt", "**/*.md", "**/*.csv", "**/*.json", "**/*.jsonl"},
		},
	}
}

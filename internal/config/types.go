package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderAzure  ProviderType = "azure"
	ProviderOllama ProviderType = "ollama"
)

// ConnectorType identifies a document storage backend.
type ConnectorType string

const (
	ConnectorGoogleDrive ConnectorType = "gdrive"
	ConnectorDropbox     ConnectorType = "dropbox"
	ConnectorSharePoint  ConnectorType = "sharepoint"
	ConnectorLocal       ConnectorType = "local"
)

// Config is the top-level magnus configuration, corresponding to .magnus.yml.
type Config struct {
	Connector ConnectorType   `yaml:"connector" koanf:"connector"`
	LLM       LLMConfig       `yaml:"llm" koanf:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Knowledge KnowledgeConfig `yaml:"knowledge" koanf:"knowledge"`
	Auth      AuthConfig      `yaml:"auth" koanf:"auth"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`

	GoogleDrive GoogleDriveConfig `yaml:"gdrive" koanf:"gdrive"`
	Dropbox     DropboxConfig     `yaml:"dropbox" koanf:"dropbox"`
	SharePoint  SharePointConfig  `yaml:"sharepoint" koanf:"sharepoint"`
	Local       LocalConfig       `yaml:"local" koanf:"local"`
}

// LLMConfig selects the chat-completion provider and model.
type LLMConfig struct {
	Provider    ProviderType `yaml:"provider" koanf:"provider"`
	Model       string       `yaml:"model" koanf:"model"`
	MaxTokens   int          `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature float64      `yaml:"temperature" koanf:"temperature"`
	// RequestsPerMinute enables a client-side rate limit when > 0.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`

	// Azure OpenAI settings; the API key comes from AZURE_OPENAI_API_KEY.
	AzureEndpoint   string `yaml:"azure_endpoint" koanf:"azure_endpoint"`
	AzureDeployment string `yaml:"azure_deployment" koanf:"azure_deployment"`
	AzureAPIVersion string `yaml:"azure_api_version" koanf:"azure_api_version"`

	// OllamaHost is the base URL of a local Ollama server.
	OllamaHost string `yaml:"ollama_host" koanf:"ollama_host"`
}

// RetrievalConfig exposes the document ranking and context assembly knobs.
// These map directly onto retrieval.Options.
type RetrievalConfig struct {
	MaxCandidates      int `yaml:"max_candidates" koanf:"max_candidates"`
	FallbackCandidates int `yaml:"fallback_candidates" koanf:"fallback_candidates"`
	SnippetMaxLen      int `yaml:"snippet_max_len" koanf:"snippet_max_len"`
	Window             int `yaml:"window" koanf:"window"`
	TotalBudget        int `yaml:"total_budget" koanf:"total_budget"`
}

// KnowledgeConfig controls knowledge base loading and caching.
type KnowledgeConfig struct {
	// CacheTTLMinutes is how long a loaded snapshot stays fresh before
	// the next chat turn triggers a reload. Zero means the default (30m).
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" koanf:"cache_ttl_minutes"`
	// Watch enables filesystem watching for the local connector.
	Watch bool `yaml:"watch" koanf:"watch"`
}

// AuthConfig holds login settings. Passwords are expected via environment
// overrides (MAGNUS_AUTH__LOGIN_PASSWORD etc), not the config file.
type AuthConfig struct {
	Username          string `yaml:"username" koanf:"username"`
	LoginPassword     string `yaml:"login_password" koanf:"login_password"`
	AdminPassword     string `yaml:"admin_password" koanf:"admin_password"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" koanf:"session_ttl_minutes"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port" koanf:"port"`
	DataDir  string `yaml:"data_dir" koanf:"data_dir"`
	AllowAll bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// GoogleDriveConfig configures the Google Drive connector. The service
// account key is a JSON file shared with the knowledge base folder.
type GoogleDriveConfig struct {
	CredentialsFile string `yaml:"credentials_file" koanf:"credentials_file"`
	FolderName      string `yaml:"folder_name" koanf:"folder_name"`
}

// DropboxConfig configures the Dropbox connector. The access token comes
// from DROPBOX_ACCESS_TOKEN.
type DropboxConfig struct {
	RootPath string `yaml:"root_path" koanf:"root_path"`
}

// SharePointConfig configures the SharePoint (Microsoft Graph) connector.
// The client secret comes from SHAREPOINT_CLIENT_SECRET.
type SharePointConfig struct {
	TenantID string `yaml:"tenant_id" koanf:"tenant_id"`
	ClientID string `yaml:"client_id" koanf:"client_id"`
	DriveID  string `yaml:"drive_id" koanf:"drive_id"`
	Folder   string `yaml:"folder" koanf:"folder"`
}

// LocalConfig configures the local folder connector, mostly used for
// development and tests.
type LocalConfig struct {
	Root    string   `yaml:"root" koanf:"root"`
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}

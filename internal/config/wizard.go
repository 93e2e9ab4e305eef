package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to magnus! Let's configure your knowledge bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Storage connector.
	connectorPrompt := promptui.Select{
		Label: "Where do your knowledge base documents live?",
		Items: []string{
			"gdrive     - Google Drive folder (service account)",
			"dropbox    - Dropbox folder",
			"sharepoint - SharePoint document library",
			"local      - local folder (development)",
		},
	}
	connectorIdx, _, err := connectorPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("connector selection: %w", err)
	}
	connectors := []ConnectorType{ConnectorGoogleDrive, ConnectorDropbox, ConnectorSharePoint, ConnectorLocal}
	cfg.Connector = connectors[connectorIdx]

	switch cfg.Connector {
	case ConnectorGoogleDrive:
		folderPrompt := promptui.Prompt{
			Label:   "Google Drive folder name",
			Default: cfg.GoogleDrive.FolderName,
		}
		if cfg.GoogleDrive.FolderName, err = folderPrompt.Run(); err != nil {
			return nil, fmt.Errorf("folder name: %w", err)
		}
		credsPrompt := promptui.Prompt{
			Label:   "Service account credentials file",
			Default: "service-account.json",
		}
		if cfg.GoogleDrive.CredentialsFile, err = credsPrompt.Run(); err != nil {
			return nil, fmt.Errorf("credentials file: %w", err)
		}
	case ConnectorDropbox:
		rootPrompt := promptui.Prompt{
			Label:   "Dropbox folder path",
			Default: cfg.Dropbox.RootPath,
		}
		if cfg.Dropbox.RootPath, err = rootPrompt.Run(); err != nil {
			return nil, fmt.Errorf("dropbox path: %w", err)
		}
		fmt.Println("Set DROPBOX_ACCESS_TOKEN in the environment before starting.")
	case ConnectorSharePoint:
		tenantPrompt := promptui.Prompt{Label: "Microsoft tenant ID"}
		if cfg.SharePoint.TenantID, err = tenantPrompt.Run(); err != nil {
			return nil, fmt.Errorf("tenant id: %w", err)
		}
		clientPrompt := promptui.Prompt{Label: "Application (client) ID"}
		if cfg.SharePoint.ClientID, err = clientPrompt.Run(); err != nil {
			return nil, fmt.Errorf("client id: %w", err)
		}
		drivePrompt := promptui.Prompt{Label: "Drive ID"}
		if cfg.SharePoint.DriveID, err = drivePrompt.Run(); err != nil {
			return nil, fmt.Errorf("drive id: %w", err)
		}
		fmt.Println("Set SHAREPOINT_CLIENT_SECRET in the environment before starting.")
	case ConnectorLocal:
		rootPrompt := promptui.Prompt{
			Label:   "Local knowledge folder",
			Default: cfg.Local.Root,
		}
		if cfg.Local.Root, err = rootPrompt.Run(); err != nil {
			return nil, fmt.Errorf("local root: %w", err)
		}
	}

	// 2. LLM provider.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{
			"openai - OpenAI Chat Completions",
			"azure  - Azure OpenAI deployment",
			"ollama - local Ollama server",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderOpenAI, ProviderAzure, ProviderOllama}
	cfg.LLM.Provider = providers[providerIdx]

	switch cfg.LLM.Provider {
	case ProviderAzure:
		endpointPrompt := promptui.Prompt{Label: "Azure OpenAI endpoint"}
		if cfg.LLM.AzureEndpoint, err = endpointPrompt.Run(); err != nil {
			return nil, fmt.Errorf("azure endpoint: %w", err)
		}
		deploymentPrompt := promptui.Prompt{
			Label:   "Azure deployment name",
			Default: "gpt-4.1-mini",
		}
		if cfg.LLM.AzureDeployment, err = deploymentPrompt.Run(); err != nil {
			return nil, fmt.Errorf("azure deployment: %w", err)
		}
		fmt.Println("Set AZURE_OPENAI_API_KEY in the environment before starting.")
	case ProviderOllama:
		modelPrompt := promptui.Prompt{
			Label:   "Ollama model",
			Default: "llama3",
		}
		if cfg.LLM.Model, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	default:
		modelPrompt := promptui.Prompt{
			Label:   "Model",
			Default: cfg.LLM.Model,
		}
		if cfg.LLM.Model, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("Remember to set MAGNUS_AUTH__LOGIN_PASSWORD and MAGNUS_AUTH__ADMIN_PASSWORD.")
	return cfg, nil
}

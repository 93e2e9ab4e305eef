package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/magroup/magnus/internal/config"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// SharePoint loads documents from a SharePoint document library through
// the Microsoft Graph API, authenticating with application (client
// credentials) permissions. The client secret comes from
// SHAREPOINT_CLIENT_SECRET.
type SharePoint struct {
	conf    *clientcredentials.Config
	driveID string
	folder  string
}

// NewSharePoint creates a SharePoint connector.
func NewSharePoint(cfg config.SharePointConfig) (*SharePoint, error) {
	secret := os.Getenv("SHAREPOINT_CLIENT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SHAREPOINT_CLIENT_SECRET environment variable is not set")
	}
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.DriveID == "" {
		return nil, fmt.Errorf("sharepoint.tenant_id, sharepoint.client_id, and sharepoint.drive_id are required")
	}

	return &SharePoint{
		conf: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: secret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		},
		driveID: cfg.DriveID,
		folder:  cfg.Folder,
	}, nil
}

func (s *SharePoint) Name() string { return "sharepoint" }

func (s *SharePoint) client(ctx context.Context) *http.Client {
	return s.conf.Client(ctx)
}

func (s *SharePoint) TestConnection(ctx context.Context) (string, error) {
	var drive struct {
		Name string `json:"name"`
	}
	u := fmt.Sprintf("%s/drives/%s", graphBaseURL, s.driveID)
	if err := s.getJSON(ctx, u, &drive); err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	return fmt.Sprintf("Connected to drive: %s", drive.Name), nil
}

type graphItem struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Size                 int64  `json:"size"`
	WebURL               string `json:"webUrl"`
	LastModifiedDateTime string `json:"lastModifiedDateTime"`
	Folder               *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`

	folderPath string
}

// Fetch walks the configured library folder recursively and downloads
// every supported file.
func (s *SharePoint) Fetch(ctx context.Context, progress ProgressFunc) ([]RawDocument, error) {
	items, err := s.listRecursive(ctx, s.folder, "")
	if err != nil {
		return nil, err
	}

	var files []graphItem
	for _, it := range items {
		if it.File != nil && isSupportedFile(it.Name) {
			files = append(files, it)
		}
	}

	var docs []RawDocument
	for i, f := range files {
		if progress != nil {
			progress(i+1, len(files), f.Name)
		}

		data, err := s.download(ctx, f.ID)
		if err != nil {
			continue
		}

		content := processContent(data, f.Name)
		if content == "" {
			continue
		}

		docs = append(docs, RawDocument{
			Name:       f.Name,
			FolderPath: f.folderPath,
			Body:       content,
			Priority:   priorityFromPath(f.folderPath),
			Modified:   f.LastModifiedDateTime,
			Size:       f.Size,
			WebURL:     f.WebURL,
		})
	}
	return docs, nil
}

// listRecursive lists children of a folder path, descending into
// subfolders. An empty path means the drive root.
func (s *SharePoint) listRecursive(ctx context.Context, folder, folderPath string) ([]graphItem, error) {
	var u string
	if folder == "" {
		u = fmt.Sprintf("%s/drives/%s/root/children", graphBaseURL, s.driveID)
	} else {
		u = fmt.Sprintf("%s/drives/%s/root:/%s:/children", graphBaseURL, s.driveID, url.PathEscape(folder))
	}

	var all []graphItem
	for u != "" {
		var result struct {
			Value    []graphItem `json:"value"`
			NextLink string      `json:"@odata.nextLink"`
		}
		if err := s.getJSON(ctx, u, &result); err != nil {
			return nil, fmt.Errorf("listing %q: %w", folder, err)
		}

		for _, it := range result.Value {
			if it.Folder != nil {
				sub, err := s.listRecursive(ctx, joinFolder(folder, it.Name), joinFolder(folderPath, it.Name))
				if err != nil {
					return nil, err
				}
				all = append(all, sub...)
				continue
			}
			it.folderPath = folderPath
			all = append(all, it)
		}
		u = result.NextLink
	}
	return all, nil
}

func (s *SharePoint) download(ctx context.Context, itemID string) ([]byte, error) {
	u := fmt.Sprintf("%s/drives/%s/items/%s/content", graphBaseURL, s.driveID, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client(ctx).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("graph download status %d: %s", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

func (s *SharePoint) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := s.client(ctx).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("graph API status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/magroup/magnus/internal/config"
)

const (
	driveScope   = "https://www.googleapis.com/auth/drive.readonly"
	driveBaseURL = "https://www.googleapis.com/drive/v3"

	mimeFolder      = "application/vnd.google-apps.folder"
	mimeGoogleDoc   = "application/vnd.google-apps.document"
	mimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
)

// GoogleDrive loads documents from a named Google Drive folder using a
// service account that the folder has been shared with.
type GoogleDrive struct {
	conf       *jwt.Config
	folderName string
}

// NewGoogleDrive creates a Google Drive connector from a service account
// key file.
func NewGoogleDrive(cfg config.GoogleDriveConfig) (*GoogleDrive, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("gdrive.credentials_file is not configured")
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading service account key: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, driveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	return &GoogleDrive{conf: conf, folderName: cfg.FolderName}, nil
}

func (g *GoogleDrive) Name() string { return "gdrive" }

// client returns an HTTP client that signs requests with the service
// account's auto-refreshing token.
func (g *GoogleDrive) client(ctx context.Context) *http.Client {
	return g.conf.Client(ctx)
}

func (g *GoogleDrive) TestConnection(ctx context.Context) (string, error) {
	var about struct {
		User struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"user"`
	}
	if err := g.getJSON(ctx, driveBaseURL+"/about?fields=user", &about); err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	return fmt.Sprintf("Connected as: %s", about.User.EmailAddress), nil
}

type driveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime"`
	Size         string `json:"size"`
	WebViewLink  string `json:"webViewLink"`

	folderPath string
}

// Fetch finds the knowledge base folder, walks it recursively, and
// downloads every supported file. Google Docs and Sheets are exported as
// plain text and CSV respectively.
func (g *GoogleDrive) Fetch(ctx context.Context, progress ProgressFunc) ([]RawDocument, error) {
	folderID, err := g.findFolder(ctx, g.folderName)
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		return nil, fmt.Errorf("folder %q not found or not shared with the service account", g.folderName)
	}

	files, err := g.listRecursive(ctx, folderID, "")
	if err != nil {
		return nil, err
	}

	var docs []RawDocument
	for i, f := range files {
		if progress != nil {
			progress(i+1, len(files), f.Name)
		}
		if !g.isSupported(f) {
			continue
		}

		data, err := g.download(ctx, f)
		if err != nil {
			// A single unreadable file should not abort the whole load.
			continue
		}

		content := processContent(data, f.Name)
		if content == "" {
			continue
		}

		size, _ := strconv.ParseInt(f.Size, 10, 64)
		docs = append(docs, RawDocument{
			Name:       f.Name,
			FolderPath: f.folderPath,
			Content:    content,
			Priority:   priorityFromPath(f.folderPath),
			MimeType:   f.MimeType,
			Modified:   f.ModifiedTime,
			Size:       size,
			WebURL:     f.WebViewLink,
		})
	}
	return docs, nil
}

func (g *GoogleDrive) isSupported(f driveFile) bool {
	if f.MimeType == mimeGoogleDoc || f.MimeType == mimeGoogleSheet {
		return true
	}
	return isSupportedFile(f.Name)
}

// findFolder resolves a folder name to its file ID.
func (g *GoogleDrive) findFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", name, mimeFolder)
	u := driveBaseURL + "/files?" + url.Values{
		"q":      {q},
		"fields": {"files(id, name)"},
	}.Encode()

	var result struct {
		Files []driveFile `json:"files"`
	}
	if err := g.getJSON(ctx, u, &result); err != nil {
		return "", fmt.Errorf("finding folder %q: %w", name, err)
	}
	if len(result.Files) == 0 {
		return "", nil
	}
	return result.Files[0].ID, nil
}

// listRecursive lists all files under a folder, descending into
// subfolders and recording the folder path for display names.
func (g *GoogleDrive) listRecursive(ctx context.Context, folderID, folderPath string) ([]driveFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", folderID)
	u := driveBaseURL + "/files?" + url.Values{
		"q":        {q},
		"fields":   {"files(id, name, mimeType, modifiedTime, size, webViewLink)"},
		"pageSize": {"1000"},
	}.Encode()

	var result struct {
		Files []driveFile `json:"files"`
	}
	if err := g.getJSON(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("listing folder: %w", err)
	}

	var all []driveFile
	for _, f := range result.Files {
		if f.MimeType == mimeFolder {
			sub, err := g.listRecursive(ctx, f.ID, joinFolder(folderPath, f.Name))
			if err != nil {
				return nil, err
			}
			all = append(all, sub...)
			continue
		}
		f.folderPath = folderPath
		all = append(all, f)
	}
	return all, nil
}

func joinFolder(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// download fetches file content, exporting Google-native formats to text.
func (g *GoogleDrive) download(ctx context.Context, f driveFile) ([]byte, error) {
	var u string
	switch f.MimeType {
	case mimeGoogleDoc:
		u = fmt.Sprintf("%s/files/%s/export?mimeType=%s", driveBaseURL, f.ID, url.QueryEscape("text/plain"))
	case mimeGoogleSheet:
		u = fmt.Sprintf("%s/files/%s/export?mimeType=%s", driveBaseURL, f.ID, url.QueryEscape("text/csv"))
	default:
		u = fmt.Sprintf("%s/files/%s?alt=media", driveBaseURL, f.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("downloading %s: status %d: %s", f.Name, resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

func (g *GoogleDrive) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := g.client(ctx).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("drive API status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

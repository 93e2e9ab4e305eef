package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/magroup/magnus/internal/config"
)

const (
	dropboxAPIURL     = "https://api.dropboxapi.com/2"
	dropboxContentURL = "https://content.dropboxapi.com/2"
)

// Dropbox loads documents from a Dropbox folder using a bearer token
// from DROPBOX_ACCESS_TOKEN.
type Dropbox struct {
	token    string
	rootPath string
	client   *http.Client
}

// NewDropbox creates a Dropbox connector.
func NewDropbox(cfg config.DropboxConfig) (*Dropbox, error) {
	token := os.Getenv("DROPBOX_ACCESS_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DROPBOX_ACCESS_TOKEN environment variable is not set")
	}
	return &Dropbox{
		token:    token,
		rootPath: cfg.RootPath,
		client:   &http.Client{},
	}, nil
}

func (d *Dropbox) Name() string { return "dropbox" }

func (d *Dropbox) TestConnection(ctx context.Context) (string, error) {
	var account struct {
		Email string `json:"email"`
	}
	if err := d.rpc(ctx, "/users/get_current_account", nil, &account); err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	return fmt.Sprintf("Connected as: %s", account.Email), nil
}

type dropboxEntry struct {
	Tag            string `json:".tag"`
	Name           string `json:"name"`
	PathLower      string `json:"path_lower"`
	PathDisplay    string `json:"path_display"`
	ClientModified string `json:"client_modified"`
	Size           int64  `json:"size"`
}

type dropboxListResult struct {
	Entries []dropboxEntry `json:"entries"`
	Cursor  string         `json:"cursor"`
	HasMore bool           `json:"has_more"`
}

// Fetch lists the configured folder recursively and downloads every
// supported file.
func (d *Dropbox) Fetch(ctx context.Context, progress ProgressFunc) ([]RawDocument, error) {
	var entries []dropboxEntry

	var result dropboxListResult
	err := d.rpc(ctx, "/files/list_folder", map[string]any{
		"path":      d.rootPath,
		"recursive": true,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.rootPath, err)
	}
	entries = append(entries, result.Entries...)

	for result.HasMore {
		if err := d.rpc(ctx, "/files/list_folder/continue", map[string]any{
			"cursor": result.Cursor,
		}, &result); err != nil {
			return nil, fmt.Errorf("continuing listing: %w", err)
		}
		entries = append(entries, result.Entries...)
	}

	var files []dropboxEntry
	for _, e := range entries {
		if e.Tag == "file" && isSupportedFile(e.Name) {
			files = append(files, e)
		}
	}

	var docs []RawDocument
	for i, f := range files {
		if progress != nil {
			progress(i+1, len(files), f.Name)
		}

		data, err := d.download(ctx, f.PathLower)
		if err != nil {
			continue
		}

		content := processContent(data, f.Name)
		if content == "" {
			continue
		}

		folderPath := d.relativeFolder(f.PathDisplay, f.Name)
		docs = append(docs, RawDocument{
			Name:       f.Name,
			FolderPath: folderPath,
			Text:       content,
			Priority:   priorityFromPath(folderPath),
			Modified:   f.ClientModified,
			Size:       f.Size,
		})
	}
	return docs, nil
}

// relativeFolder strips the configured root and the file name from a
// display path, leaving the subfolder portion.
func (d *Dropbox) relativeFolder(pathDisplay, name string) string {
	p := strings.TrimPrefix(pathDisplay, d.rootPath)
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, name)
	return strings.Trim(p, "/")
}

// rpc posts a JSON request to the Dropbox RPC API.
func (d *Dropbox) rpc(ctx context.Context, endpoint string, args any, out any) error {
	body := []byte("null")
	if args != nil {
		var err error
		body, err = json.Marshal(args)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dropboxAPIURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("dropbox API status %d: %s", resp.StatusCode, respBody)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// download fetches file content through the Dropbox content endpoint.
func (d *Dropbox) download(ctx context.Context, path string) ([]byte, error) {
	arg, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dropboxContentURL+"/files/download", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("dropbox download status %d: %s", resp.StatusCode, respBody)
	}
	return io.ReadAll(resp.Body)
}

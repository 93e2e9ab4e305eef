// Package connector loads raw documents from storage backends and
// normalizes them into the single document shape the retrieval core
// consumes. Credential handling and file listing live here; the core
// stays agnostic to document origin.
package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/magroup/magnus/internal/config"
)

// ProgressFunc reports loading progress: processed count, total count,
// and the name of the file currently being processed. May be nil.
type ProgressFunc func(processed, total int, current string)

// RawDocument is one file as returned by a backend, before normalization.
// Backends populate whichever content field their API naturally yields;
// Normalize folds them into a single text field.
type RawDocument struct {
	Name       string
	FolderPath string
	// Content, Text, and Body are alternative content fields. The first
	// non-empty one wins during normalization.
	Content string
	Text    string
	Body    string
	// Priority is the editorial rank (1-4); zero means unset.
	Priority int
	MimeType string
	Modified string
	Size     int64
	WebURL   string
}

// Connector is a document storage backend.
type Connector interface {
	// Name identifies the backend (gdrive, dropbox, sharepoint, local).
	Name() string
	// TestConnection verifies credentials and reachability, returning a
	// short human-readable status on success.
	TestConnection(ctx context.Context) (string, error)
	// Fetch lists and downloads all supported documents.
	Fetch(ctx context.Context, progress ProgressFunc) ([]RawDocument, error)
}

// New creates the connector selected by the configuration.
func New(cfg *config.Config) (Connector, error) {
	switch cfg.Connector {
	case config.ConnectorGoogleDrive:
		return NewGoogleDrive(cfg.GoogleDrive)
	case config.ConnectorDropbox:
		return NewDropbox(cfg.Dropbox)
	case config.ConnectorSharePoint:
		return NewSharePoint(cfg.SharePoint)
	case config.ConnectorLocal:
		return NewLocal(cfg.Local), nil
	default:
		return nil, fmt.Errorf("unknown connector: %s", cfg.Connector)
	}
}

// supportedExtensions are the text-ish file types every backend accepts.
// Binary formats needing real extraction (PDF, DOCX) are skipped; content
// extraction for those happens upstream of this system.
var supportedExtensions = []string{".txt", ".md", ".csv", ".json", ".jsonl"}

// isSupportedFile reports whether a file should be ingested, by extension.
func isSupportedFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

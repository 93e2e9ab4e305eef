package connector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/magroup/magnus/internal/config"
)

// defaultLocalExcludes are directory names skipped during traversal.
var defaultLocalExcludes = []string{
	".git",
	".magnus",
	"node_modules",
	".DS_Store",
}

// Local loads documents from a folder on disk. Used for development and
// as the watchable backend for filesystem refresh.
type Local struct {
	root    string
	include []string
	exclude []string
}

// NewLocal creates a local folder connector.
func NewLocal(cfg config.LocalConfig) *Local {
	return &Local{
		root:    cfg.Root,
		include: cfg.Include,
		exclude: cfg.Exclude,
	}
}

func (l *Local) Name() string { return "local" }

// Root returns the folder being served, for filesystem watching.
func (l *Local) Root() string { return l.root }

func (l *Local) TestConnection(ctx context.Context) (string, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", l.root)
	}
	return fmt.Sprintf("Serving folder: %s", l.root), nil
}

// Fetch walks the root folder and reads every file matching the include
// patterns and not matching the exclude patterns.
func (l *Local) Fetch(ctx context.Context, progress ProgressFunc) ([]RawDocument, error) {
	var paths []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, excl := range defaultLocalExcludes {
				if strings.EqualFold(d.Name(), excl) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		if !matchesAny(rel, l.include, true) || matchesAny(rel, l.exclude, false) {
			return nil
		}
		if !isSupportedFile(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", l.root, err)
	}

	var docs []RawDocument
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(path)
		if progress != nil {
			progress(i+1, len(paths), name)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content := processContent(data, name)
		if content == "" {
			continue
		}

		rel, _ := filepath.Rel(l.root, path)
		folderPath := filepath.ToSlash(filepath.Dir(rel))
		if folderPath == "." {
			folderPath = ""
		}

		info, _ := os.Stat(path)
		var size int64
		var modified string
		if info != nil {
			size = info.Size()
			modified = info.ModTime().UTC().Format("2006-01-02T15:04:05Z")
		}

		docs = append(docs, RawDocument{
			Name:       name,
			FolderPath: folderPath,
			Content:    content,
			Priority:   priorityFromPath(folderPath),
			Modified:   modified,
			Size:       size,
		})
	}
	return docs, nil
}

// matchesAny checks a relative path against glob patterns with **
// support. emptyMeans is returned when the pattern list is empty, so
// include lists default to everything and exclude lists to nothing.
func matchesAny(relPath string, patterns []string, emptyMeans bool) bool {
	if len(patterns) == 0 {
		return emptyMeans
	}
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		// Also match against the bare filename for patterns like "*.txt".
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(normalized)); err == nil && matched {
			return true
		}
	}
	return false
}

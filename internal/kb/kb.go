// Package kb maintains the in-memory knowledge base snapshot: it loads
// documents through a connector, caches them for a configurable TTL, and
// serves consistent copies to the chat engine and dashboard.
package kb

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magroup/magnus/internal/config"
	"github.com/magroup/magnus/internal/connector"
	"github.com/magroup/magnus/internal/db"
	"github.com/magroup/magnus/internal/retrieval"
)

// Stats summarizes the current snapshot for the dashboard status panel.
type Stats struct {
	Connector     string      `json:"connector"`
	DocumentCount int         `json:"document_count"`
	LoadedAt      time.Time   `json:"loaded_at"`
	StaleAt       time.Time   `json:"stale_at"`
	ByPriority    map[int]int `json:"by_priority"`
}

// Service owns the knowledge base snapshot. All methods are safe for
// concurrent use.
type Service struct {
	conn connector.Connector
	db   *db.DB
	ttl  time.Duration

	mu       sync.RWMutex
	docs     []retrieval.Document
	loadedAt time.Time
}

// New creates a knowledge base service. The database handle may be nil;
// load history recording is skipped in that case.
func New(conn connector.Connector, database *db.DB, cfg config.KnowledgeConfig) *Service {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		conn: conn,
		db:   database,
		ttl:  ttl,
	}
}

// Documents returns the current snapshot, refreshing it first when the
// cache has expired or has never been loaded.
func (s *Service) Documents(ctx context.Context) ([]retrieval.Document, error) {
	s.mu.RLock()
	fresh := !s.loadedAt.IsZero() && time.Since(s.loadedAt) < s.ttl
	if fresh {
		docs := copyDocs(s.docs)
		s.mu.RUnlock()
		return docs, nil
	}
	s.mu.RUnlock()

	docs, err := s.Refresh(ctx, nil)
	if err != nil {
		// Serve the stale snapshot if one exists rather than failing the
		// chat turn outright.
		s.mu.RLock()
		defer s.mu.RUnlock()
		if !s.loadedAt.IsZero() {
			log.Printf("kb: refresh failed, serving stale snapshot: %v", err)
			return copyDocs(s.docs), nil
		}
		return nil, err
	}
	return docs, nil
}

// Refresh fetches all documents from the connector and swaps in a new
// snapshot. The optional progress callback receives per-file updates.
func (s *Service) Refresh(ctx context.Context, progress connector.ProgressFunc) ([]retrieval.Document, error) {
	start := time.Now()
	raws, err := s.conn.Fetch(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("fetching documents from %s: %w", s.conn.Name(), err)
	}

	docs := connector.Normalize(raws)

	s.mu.Lock()
	s.docs = docs
	s.loadedAt = time.Now()
	s.mu.Unlock()

	log.Printf("kb: loaded %d documents from %s in %s", len(docs), s.conn.Name(), time.Since(start).Round(time.Millisecond))
	s.recordLoad(ctx, len(docs))
	return copyDocs(docs), nil
}

// Snapshot returns a copy of the cached documents without triggering a
// refresh, along with the load time.
func (s *Service) Snapshot() ([]retrieval.Document, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDocs(s.docs), s.loadedAt
}

// Stats describes the current snapshot.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPriority := make(map[int]int)
	for _, d := range s.docs {
		byPriority[d.Priority]++
	}
	return Stats{
		Connector:     s.conn.Name(),
		DocumentCount: len(s.docs),
		LoadedAt:      s.loadedAt,
		StaleAt:       s.loadedAt.Add(s.ttl),
		ByPriority:    byPriority,
	}
}

// Invalidate marks the snapshot stale so the next Documents call reloads.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Service) recordLoad(ctx context.Context, count int) {
	if s.db == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kb_loads (id, connector, document_count) VALUES (?, ?, ?)`,
		uuid.NewString(), s.conn.Name(), count)
	if err != nil {
		log.Printf("kb: recording load history: %v", err)
	}
}

func copyDocs(docs []retrieval.Document) []retrieval.Document {
	out := make([]retrieval.Document, len(docs))
	copy(out, docs)
	return out
}

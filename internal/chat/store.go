// Package chat implements the conversation flow: a small state machine
// that greets the user, routes their request into a category, and answers
// questions by combining the knowledge base context with the LLM.
package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magroup/magnus/internal/db"
)

// State is the conversation stage a session is in.
type State string

const (
	StateInitial           State = "initial"
	StateCategorizing      State = "categorizing"
	StateCategorized       State = "categorized"
	StateWaitingForIssue   State = "waiting_for_issue"
	StateWaitingForProblem State = "waiting_for_problem"
	StateCompleted         State = "completed"
)

// answering reports whether the knowledge base and LLM are consulted in
// this state.
func (s State) answering() bool {
	return s == StateCategorized || s == StateWaitingForIssue || s == StateWaitingForProblem
}

// Session is one conversation with the bot.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one chat message within a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions and messages in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a chat store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// CreateSession inserts a new session in the initial state.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		State:     StateInitial,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, state, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, string(sess.State), sess.Category, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by ID. Returns nil when not found.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	sess := &Session{}
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, state, category, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &state, &sess.Category, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	sess.State = State(state)
	return sess, nil
}

// UpdateSession sets the state and category of a session.
func (s *Store) UpdateSession(ctx context.Context, id string, state State, category string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, category = ?, updated_at = ? WHERE id = ?`,
		string(state), category, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return nil
}

// AddMessage appends a message to a session.
func (s *Store) AddMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	msg := &Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}
	return msg, nil
}

// Messages returns all messages of a session in chronological order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at FROM messages
		 WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ResetSession clears a session's history and returns it to the initial
// state. Used after gratitude detection.
func (s *Store) ResetSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return s.UpdateSession(ctx, id, StateInitial, "")
}

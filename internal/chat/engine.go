package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/magroup/magnus/internal/kb"
	"github.com/magroup/magnus/internal/llm"
	"github.com/magroup/magnus/internal/retrieval"
)

// Reply is the engine's answer to one user message.
type Reply struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	State     State  `json:"state"`
	Category  string `json:"category,omitempty"`
	// Reset signals that the conversation was concluded and the session
	// returned to its initial state.
	Reset bool `json:"reset,omitempty"`
}

// Engine drives the conversation state machine.
type Engine struct {
	store    *Store
	kb       *kb.Service
	provider llm.Provider
	model    string
	opts     retrieval.Options
}

// NewEngine creates a conversation engine.
func NewEngine(store *Store, kbSvc *kb.Service, provider llm.Provider, model string, opts retrieval.Options) *Engine {
	return &Engine{
		store:    store,
		kb:       kbSvc,
		provider: provider,
		model:    model,
		opts:     opts,
	}
}

// Store exposes the underlying session store.
func (e *Engine) Store() *Store { return e.store }

// Greet opens a conversation: it records the welcome message and moves
// the session into the categorizing state.
func (e *Engine) Greet(ctx context.Context, sessionID string) (*Reply, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	if _, err := e.store.AddMessage(ctx, sessionID, "assistant", welcomeMessage); err != nil {
		return nil, err
	}
	if err := e.store.UpdateSession(ctx, sessionID, StateCategorizing, ""); err != nil {
		return nil, err
	}
	return &Reply{SessionID: sessionID, Content: welcomeMessage, State: StateCategorizing}, nil
}

// HandleMessage advances the session's state machine with one user input.
// In the answering states the knowledge base is consulted and the LLM
// streams its answer through onDelta (which may be nil).
func (e *Engine) HandleMessage(ctx context.Context, sessionID, input string, onDelta llm.StreamFunc) (*Reply, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	if _, err := e.store.AddMessage(ctx, sessionID, "user", input); err != nil {
		return nil, err
	}

	switch {
	case sess.State == StateInitial:
		return e.respond(ctx, sess, categoryMenu, StateCategorizing, "")
	case sess.State == StateCategorizing:
		return e.categorize(ctx, sess, input)
	case sess.State.answering():
		if isGratitude(input) {
			if err := e.store.ResetSession(ctx, sessionID); err != nil {
				return nil, err
			}
			return &Reply{SessionID: sessionID, Content: gratitudeResponse, State: StateInitial, Reset: true}, nil
		}
		return e.answer(ctx, sess, onDelta)
	default: // completed
		return e.respond(ctx, sess, categoryMenu, StateCategorizing, "")
	}
}

// categorize routes the user's choice into one of the four request
// categories, or re-prompts when none matches.
func (e *Engine) categorize(ctx context.Context, sess *Session, input string) (*Reply, error) {
	choice := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.Contains(choice, "question"):
		return e.respond(ctx, sess, questionPrompt, StateCategorized, "question")
	case strings.Contains(choice, "change"):
		return e.respond(ctx, sess, changeResponse, StateCompleted, "change")
	case strings.Contains(choice, "issue"):
		return e.respond(ctx, sess, issuePrompt, StateWaitingForIssue, "issue")
	case strings.Contains(choice, "problem"):
		return e.respond(ctx, sess, problemPrompt, StateWaitingForProblem, "problem")
	default:
		return e.respond(ctx, sess, clarifyResponse, StateCategorizing, "")
	}
}

// answer runs the retrieval pipeline and the LLM for one question.
func (e *Engine) answer(ctx context.Context, sess *Session, onDelta llm.StreamFunc) (*Reply, error) {
	docs, err := e.kb.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	history, err := e.store.Messages(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	// The user's current input is already persisted and is the last entry.
	input := history[len(history)-1].Content

	tokens, bigrams := retrieval.Tokenize(input)
	ranked := retrieval.Rank(docs, tokens, bigrams, e.opts)
	knowledgeContext := retrieval.BuildContext(ranked, tokens, bigrams, e.opts)

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(knowledgeContext)})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	req := llm.CompletionRequest{Model: e.model, Messages: messages}
	var resp *llm.CompletionResponse
	if onDelta != nil {
		resp, err = e.provider.Stream(ctx, req, onDelta)
	} else {
		resp, err = e.provider.Complete(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	content := resp.Content
	nextState := sess.State
	if sess.State == StateWaitingForIssue || sess.State == StateWaitingForProblem {
		found := !strings.Contains(strings.ToLower(content), notFoundPhrase)
		content += followUp(sess.Category, found)
		nextState = StateCompleted
	}

	return e.respond(ctx, sess, content, nextState, sess.Category)
}

// respond persists the assistant message, moves the session to the next
// state, and builds the reply.
func (e *Engine) respond(ctx context.Context, sess *Session, content string, next State, category string) (*Reply, error) {
	if _, err := e.store.AddMessage(ctx, sess.ID, "assistant", content); err != nil {
		return nil, err
	}
	if err := e.store.UpdateSession(ctx, sess.ID, next, category); err != nil {
		return nil, err
	}
	return &Reply{SessionID: sess.ID, Content: content, State: next, Category: category}, nil
}

// isGratitude reports whether the message signals a resolved conversation.
func isGratitude(input string) bool {
	lower := strings.ToLower(input)
	for _, indicator := range gratitudeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

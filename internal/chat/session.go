// Package chat holds the conversation state of one chat widget and relays
// user turns to the assistant backend.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Roles of a transcript entry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body sent to the chat endpoint. History holds the turns
// before Message; Message itself is never part of it.
type Request struct {
	Message string    `json:"message"`
	History []Message `json:"conversation_history"`
}

// Transport performs one round-trip and returns the assistant's reply.
type Transport interface {
	Send(ctx context.Context, req Request) (string, error)
}

// State is a snapshot of the session.
type State struct {
	Messages  []Message
	Input     string
	IsLoading bool
	Error     string
}

// Session is the state of one chat widget. It is safe for concurrent use;
// at most one round-trip is outstanding at a time.
type Session struct {
	id        string
	transport Transport
	logger    *slog.Logger
	onChange  func(State)

	mu        sync.Mutex
	messages  []Message
	input     string
	isLoading bool
	err       string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithOnChange registers a callback run after every state change. It runs
// outside the session lock and may read the session.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// NewSession returns an empty session.
func NewSession(t Transport, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		transport: t,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("flow", "chat", "session", s.id)
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return State{
		Messages:  msgs,
		Input:     s.input,
		IsLoading: s.isLoading,
		Error:     s.err,
	}
}

// update applies fn under the lock and notifies the observer.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	st := s.snapshot()
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(st)
	}
}

// SetInput replaces the pending text.
func (s *Session) SetInput(text string) {
	s.update(func() { s.input = text })
}

// SendMessage sends the pending text. It returns false without doing
// anything when the text is blank or a round-trip is already outstanding.
// Failures land in State().Error; the transcript only ever gains the user
// turn and, on success, the assistant turn.
func (s *Session) SendMessage(ctx context.Context) bool {
	var (
		req     Request
		started bool
	)
	s.update(func() {
		text := strings.TrimSpace(s.input)
		if text == "" || s.isLoading {
			return
		}
		started = true

		history := make([]Message, len(s.messages))
		copy(history, s.messages)
		req = Request{Message: text, History: history}

		s.input = ""
		s.err = ""
		s.isLoading = true
		s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	})
	if !started {
		return false
	}

	defer s.update(func() { s.isLoading = false })

	reply, err := s.transport.Send(ctx, req)
	if err != nil {
		s.logger.Error("chat error", "error", err)
		s.update(func() { s.err = errorText(err) })
		return true
	}

	s.update(func() {
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	})
	s.logger.Debug("chat turn complete", "turns", len(req.History)/2+1)
	return true
}

// ClearChat empties the transcript and the error. Loading state and pending
// input are left alone.
func (s *Session) ClearChat() {
	s.update(func() {
		s.messages = nil
		s.err = ""
	})
}

// KeyEvent is a key press in the input box.
type KeyEvent struct {
	Key   string
	Shift bool
}

// KeyEnter is the Key of the Enter key.
const KeyEnter = "Enter"

// HandleKey sends on Enter without Shift and reports that the key's default
// (a newline) must be suppressed. Every other key is left to the input.
func (s *Session) HandleKey(ctx context.Context, ev KeyEvent) bool {
	if ev.Key != KeyEnter || ev.Shift {
		return false
	}
	s.SendMessage(ctx)
	return true
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	sessionmodel "github.com/endoscribe/backend/internal/model/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed; start a new session")
)

// entry pairs one session's state with its own lock so mutations on
// distinct sessions never contend with each other.
type entry struct {
	mu    sync.Mutex
	state sessionmodel.State
}

// Store is the single source of truth for realtime session state.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore bootstraps the in-memory session registry.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Create provisions a new session with the requested auto-generate flag.
func (s *Store) Create(_ context.Context, autoGenerate bool) sessionmodel.State {
	state := sessionmodel.State{
		ID:           uuid.NewString(),
		AutoGenerate: autoGenerate,
		Messages:     make([]sessionmodel.Message, 0, 16),
		Images:       make([]sessionmodel.Image, 0, 8),
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries[state.ID] = &entry{state: state}
	s.mu.Unlock()

	return snapshot(state)
}

// Get returns a copy of the session state by identifier.
func (s *Store) Get(_ context.Context, sessionID string) (sessionmodel.State, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return sessionmodel.State{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.state), nil
}

// AddMessage appends a message to the session conversation. Content is
// trimmed but not validated; closed-session policy is enforced by callers.
func (s *Store) AddMessage(_ context.Context, sessionID, role, content string) (sessionmodel.State, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return sessionmodel.State{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Messages = append(e.state.Messages, sessionmodel.Message{
		Role:      role,
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now().UTC(),
	})
	return snapshot(e.state), nil
}

// AddImage records a classified image for later opnote generation.
func (s *Store) AddImage(_ context.Context, sessionID string, img sessionmodel.Image) (sessionmodel.State, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return sessionmodel.State{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Images = append(e.state.Images, img)
	return snapshot(e.state), nil
}

// Close marks a session as closed while keeping its contents for
// generation. Closing an already closed session is a no-op.
func (s *Store) Close(_ context.Context, sessionID string) (sessionmodel.State, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return sessionmodel.State{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Closed = true
	return snapshot(e.state), nil
}

// SetAutoGenerate overrides the auto-generate flag for a session.
func (s *Store) SetAutoGenerate(_ context.Context, sessionID string, autoGenerate bool) (sessionmodel.State, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return sessionmodel.State{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.AutoGenerate = autoGenerate
	return snapshot(e.state), nil
}

// RecentMessagesText renders the last limit messages as a "ROLE: content"
// transcript in arrival order. A limit of zero renders all messages.
func (s *Store) RecentMessagesText(_ context.Context, sessionID string, limit int) (string, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lines := messageLines(e.state.Messages, limit)
	if len(lines) == 0 {
		return "No messages recorded.", nil
	}
	return strings.Join(lines, "\n"), nil
}

// ContextSummary renders the recent conversation plus a short summary of
// labeled images, used to ground oracle prompts in session history.
func (s *Store) ContextSummary(_ context.Context, sessionID string, limit int) (string, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lines := messageLines(e.state.Messages, limit)
	if len(e.state.Images) > 0 {
		lines = append(lines, "IMAGES SEEN:")
		for _, img := range e.state.Images {
			lines = append(lines, imageLine(img))
		}
	}
	if len(lines) == 0 {
		return "No messages recorded.", nil
	}
	return strings.Join(lines, "\n"), nil
}

// ImagesSummary renders one line per classified image.
func (s *Store) ImagesSummary(_ context.Context, sessionID string) (string, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lines := make([]string, 0, len(e.state.Images))
	for _, img := range e.state.Images {
		lines = append(lines, imageLine(img))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Store) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	return e, nil
}

func messageLines(messages []sessionmodel.Message, limit int) []string {
	start := 0
	if limit > 0 && len(messages) > limit {
		start = len(messages) - limit
	}

	lines := make([]string, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content))
	}
	return lines
}

func imageLine(img sessionmodel.Image) string {
	label := img.Label
	if label == "" {
		label = "Unlabeled site"
	}
	description := img.Description
	if description == "" {
		description = "No description."
	}
	return fmt.Sprintf("%d: %s - %s", img.ID, label, description)
}

// snapshot deep-copies the history slices so callers never observe
// partial appends.
func snapshot(state sessionmodel.State) sessionmodel.State {
	messages := make([]sessionmodel.Message, len(state.Messages))
	copy(messages, state.Messages)
	images := make([]sessionmodel.Image, len(state.Images))
	copy(images, state.Images)

	state.Messages = messages
	state.Images = images
	return state
}

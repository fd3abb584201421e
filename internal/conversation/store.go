package conversation

import (
	"context"
	"sync"

	"github.com/hyperjump/rentassist/internal/models"
)

// Store persists conversation turns per session. Turns are only ever
// appended; Recent returns them oldest first.
type Store interface {
	Append(ctx context.Context, sessionID string, turns ...models.ConversationTurn) error
	Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.ConversationTurn
	maxTurns int
}

// NewMemoryStore creates a MemoryStore keeping at most maxTurns turns per
// session (0 = unbounded).
func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]models.ConversationTurn), maxTurns: maxTurns}
}

// Append adds turns to the session, dropping the oldest beyond maxTurns.
func (m *MemoryStore) Append(ctx context.Context, sessionID string, turns ...models.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := append(m.sessions[sessionID], turns...)
	if m.maxTurns > 0 && len(s) > m.maxTurns {
		s = append([]models.ConversationTurn(nil), s[len(s)-m.maxTurns:]...)
	}
	m.sessions[sessionID] = s
	return nil
}

// Recent returns the last n turns (all when n <= 0).
func (m *MemoryStore) Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[sessionID]
	if n > 0 && len(s) > n {
		s = s[len(s)-n:]
	}
	out := make([]models.ConversationTurn, len(s))
	copy(out, s)
	return out, nil
}

// Clear removes the session.
func (m *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

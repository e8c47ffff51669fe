package memory

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultBufferSize = 10
	DefaultMaxStored  = 200
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type history struct {
	mu    sync.Mutex
	turns []Turn
}

// Store holds bounded per-user conversation history. Operations on the same
// user are serialized; different users never contend.
type Store struct {
	mu        sync.RWMutex
	maxStored int
	users     map[string]*history
}

// NewStore returns a Store that keeps at most maxStored turns per user,
// dropping the oldest once the cap is reached.
func NewStore(maxStored int) *Store {
	if maxStored <= 0 {
		maxStored = DefaultMaxStored
	}
	return &Store{
		maxStored: maxStored,
		users:     make(map[string]*history),
	}
}

// AppendTurn records a completed exchange: the user turn followed by the
// assistant turn.
func (s *Store) AppendTurn(username, userText, assistantText string) {
	h := s.getOrCreate(username)
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns,
		Turn{Role: RoleUser, Content: userText, CreatedAt: now},
		Turn{Role: RoleAssistant, Content: assistantText, CreatedAt: now},
	)
	if len(h.turns) > s.maxStored {
		trimmed := make([]Turn, s.maxStored)
		copy(trimmed, h.turns[len(h.turns)-s.maxStored:])
		h.turns = trimmed
	}
}

// RenderRecent returns the last maxTurns turns, oldest first, ready for prompt
// construction. A user without history gets an empty slice.
func (s *Store) RenderRecent(username string, maxTurns int) []Turn {
	if maxTurns <= 0 {
		maxTurns = DefaultBufferSize
	}
	s.mu.RLock()
	h := s.users[username]
	s.mu.RUnlock()
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	start := 0
	if len(h.turns) > maxTurns {
		start = len(h.turns) - maxTurns
	}
	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// Clear removes the user's entire history. Clearing an absent history is a
// no-op.
func (s *Store) Clear(username string) {
	s.mu.Lock()
	delete(s.users, username)
	s.mu.Unlock()
}

func (s *Store) getOrCreate(username string) *history {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.users[username]
	if !ok {
		h = &history{}
		s.users[username] = h
	}
	return h
}

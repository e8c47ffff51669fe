package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendThenRenderRecent(t *testing.T) {
	s := NewStore(0)
	s.AppendTurn("alice", "hello", "hi there")

	turns := s.RenderRecent("alice", 2)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "hi there", turns[1].Content)
}

func TestRenderRecent_NoHistory(t *testing.T) {
	s := NewStore(0)
	assert.Empty(t, s.RenderRecent("nobody", 10))
}

func TestRenderRecent_WindowIsOldestFirst(t *testing.T) {
	s := NewStore(0)
	for i := 0; i < 5; i++ {
		s.AppendTurn("alice", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	// 10 turns stored, window of 4 should be the last two exchanges in order.
	turns := s.RenderRecent("alice", 4)
	require.Len(t, turns, 4)
	assert.Equal(t, "q3", turns[0].Content)
	assert.Equal(t, "a3", turns[1].Content)
	assert.Equal(t, "q4", turns[2].Content)
	assert.Equal(t, "a4", turns[3].Content)
}

func TestRenderRecent_WindowLargerThanHistory(t *testing.T) {
	s := NewStore(0)
	s.AppendTurn("alice", "only question", "only answer")

	turns := s.RenderRecent("alice", 10)
	assert.Len(t, turns, 2)
}

func TestClear_Idempotent(t *testing.T) {
	s := NewStore(0)
	s.AppendTurn("alice", "q", "a")

	s.Clear("alice")
	assert.Empty(t, s.RenderRecent("alice", 10))

	// clearing again, and clearing an unknown user, must not panic
	s.Clear("alice")
	s.Clear("ghost")
}

func TestStoredHistoryIsCapped(t *testing.T) {
	s := NewStore(6)
	for i := 0; i < 10; i++ {
		s.AppendTurn("alice", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := s.RenderRecent("alice", 100)
	require.Len(t, turns, 6)
	assert.Equal(t, "q7", turns[0].Content, "oldest turns are dropped at the cap")
}

func TestUsersAreIsolated(t *testing.T) {
	s := NewStore(0)
	s.AppendTurn("alice", "alice question", "alice answer")
	s.AppendTurn("bob", "bob question", "bob answer")

	aliceTurns := s.RenderRecent("alice", 10)
	require.Len(t, aliceTurns, 2)
	assert.Equal(t, "alice question", aliceTurns[0].Content)

	s.Clear("alice")
	assert.Empty(t, s.RenderRecent("alice", 10))
	assert.Len(t, s.RenderRecent("bob", 10), 2)
}

func TestConcurrentAppendsKeepPairsIntact(t *testing.T) {
	s := NewStore(1000)
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.AppendTurn("alice", fmt.Sprintf("q%d", n), fmt.Sprintf("a%d", n))
		}(i)
	}
	wg.Wait()

	turns := s.RenderRecent("alice", 1000)
	require.Len(t, turns, writers*2)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, RoleUser, turns[i].Role, "turn %d", i)
		assert.Equal(t, RoleAssistant, turns[i+1].Role, "turn %d", i+1)
		// the assistant turn must answer the user turn it was appended with
		assert.Equal(t, "a"+turns[i].Content[1:], turns[i+1].Content)
	}
}

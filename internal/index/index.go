package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/muralianand12345/AI-API/internal/chunk"
)

const (
	DefaultTopK        = 3
	embeddingBatchSize = 10 // many providers cap batch size
)

// Embedder converts text into vectors. Implementations may fail with
// ai.ErrEmbedding, which callers must be able to distinguish.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Stats describes one user's index.
type Stats struct {
	TotalChunks int
	HasIndex    bool
}

type entry struct {
	text     string
	document string
	position int
	vector   []float32
}

// userIndex is an append-only brute-force cosine index. Reads may run
// concurrently; appends are serialized per user.
type userIndex struct {
	mu      sync.RWMutex
	entries []entry
}

// Store maps user identities to their vector indexes. Indexes are created
// lazily on first insert and never shared across users; a search for one user
// can only ever see that user's entries.
type Store struct {
	mu       sync.RWMutex
	embedder Embedder
	users    map[string]*userIndex
}

func NewStore(embedder Embedder) *Store {
	return &Store{
		embedder: embedder,
		users:    make(map[string]*userIndex),
	}
}

// CreateOrInsert embeds the chunks and appends them to the user's index,
// creating it on first insert. All embedding calls happen before any index
// mutation, so a failed call leaves the index untouched. Each chunk is
// embedded exactly once.
func (s *Store) CreateOrInsert(ctx context.Context, username, document string, chunks []chunk.Chunk) error {
	if username == "" {
		return fmt.Errorf("username is empty")
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var vectors [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]entry, len(chunks))
	for i, c := range chunks {
		entries[i] = entry{
			text:     c.Text,
			document: document,
			position: c.Index,
			vector:   vectors[i],
		}
	}

	idx := s.getOrCreate(username)
	idx.mu.Lock()
	idx.entries = append(idx.entries, entries...)
	idx.mu.Unlock()
	return nil
}

// Search embeds the query and returns the texts of the top-k most similar
// chunks for the user, best first. A user with no index gets an empty result,
// not an error.
func (s *Store) Search(ctx context.Context, username, query string, k int) ([]string, error) {
	idx := s.get(username)
	if idx == nil {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	scored := make([]struct {
		text  string
		score float64
	}, len(idx.entries))
	for i, e := range idx.entries {
		scored[i].text = e.text
		scored[i].score = cosineSimilarity(queryVec, e.vector)
	}
	idx.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if k > len(scored) {
		k = len(scored)
	}
	texts := make([]string, k)
	for i := 0; i < k; i++ {
		texts[i] = scored[i].text
	}
	return texts, nil
}

// Stats reports the cumulative chunk count for the user.
func (s *Store) Stats(username string) Stats {
	idx := s.get(username)
	if idx == nil {
		return Stats{}
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{TotalChunks: len(idx.entries), HasIndex: true}
}

func (s *Store) get(username string) *userIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[username]
}

func (s *Store) getOrCreate(username string) *userIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.users[username]
	if !ok {
		idx = &userIndex{}
		s.users[username] = idx
	}
	return idx
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

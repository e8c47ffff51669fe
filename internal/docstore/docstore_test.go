package docstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muralianand12345/AI-API/internal/chunk"
	"github.com/muralianand12345/AI-API/internal/index"
)

// fakeLoader returns the stored file content as-is, standing in for PDF text
// extraction.
type fakeLoader struct {
	err error
}

func (l *fakeLoader) LoadText(path string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func newTestStore(t *testing.T, loader Loader) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), chunk.NewSplitter(100, 20), loader, index.NewStore(stubEmbedder{}), 3)
	require.NoError(t, err)
	return s
}

func TestIngest_StoresFileAndIndexesChunks(t *testing.T) {
	s := newTestStore(t, &fakeLoader{})

	content := strings.Repeat("lorem ipsum ", 30) // ~360 runes -> 5 chunks at 100/20
	result, err := s.Ingest(context.Background(), "alice", []byte(content), "notes.pdf")
	require.NoError(t, err)

	assert.Equal(t, 5, result.ChunkCount)
	assert.True(t, strings.HasSuffix(result.StoredFilename, "_notes.pdf"))

	saved, err := os.ReadFile(result.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, string(saved))

	stats := s.Stats("alice")
	assert.Equal(t, 5, stats.TotalChunks)
	assert.True(t, stats.HasIndex)
}

func TestIngest_FilenameTraversalIsNeutralized(t *testing.T) {
	s := newTestStore(t, &fakeLoader{})

	result, err := s.Ingest(context.Background(), "alice", []byte("content"), "../../etc/passwd")
	require.NoError(t, err)

	rel, err := filepath.Rel(s.baseDir, result.StoragePath)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."), "stored path must stay inside the base dir")
	assert.Contains(t, result.StoragePath, filepath.Join(s.baseDir, "alice"))
}

func TestIngest_RepeatedUploadsDoNotCollide(t *testing.T) {
	s := newTestStore(t, &fakeLoader{})
	ctx := context.Background()

	first, err := s.Ingest(ctx, "alice", []byte("first version"), "resume.pdf")
	require.NoError(t, err)
	second, err := s.Ingest(ctx, "alice", []byte("second version"), "resume.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first.StoragePath, second.StoragePath)
	saved, err := os.ReadFile(first.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "first version", string(saved))
}

func TestIngest_EmptyDocumentRejectedAndFileRemoved(t *testing.T) {
	s := newTestStore(t, &fakeLoader{})

	_, err := s.Ingest(context.Background(), "alice", []byte("   \n  "), "blank.pdf")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	entries, readErr := os.ReadDir(filepath.Join(s.baseDir, "alice"))
	require.NoError(t, readErr)
	assert.Empty(t, entries, "rejected upload must not leave a file behind")
}

func TestIngest_LoaderFailureIsStorageErrorAndFileRemoved(t *testing.T) {
	s := newTestStore(t, &fakeLoader{err: os.ErrPermission})

	_, err := s.Ingest(context.Background(), "alice", []byte("content"), "broken.pdf")
	assert.ErrorIs(t, err, ErrStorage)

	entries, readErr := os.ReadDir(filepath.Join(s.baseDir, "alice"))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSearch_DelegatesToIndex(t *testing.T) {
	s := newTestStore(t, &fakeLoader{})
	ctx := context.Background()

	results, err := s.Search(ctx, "alice", "anything")
	require.NoError(t, err)
	assert.Empty(t, results, "no uploads yet")

	_, err = s.Ingest(ctx, "alice", []byte("short document"), "doc.pdf")
	require.NoError(t, err)

	results, err = s.Search(ctx, "alice", "short document")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "short document", results[0])
}

func TestSanitizeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"notes.pdf", "notes.pdf"},
		{"my file (1).pdf", "my_file__1_.pdf"},
		{"..", ""},
		{"a/b\\c.pdf", "a_b_c.pdf"},
		{"user@example.com", "user_example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeComponent(tt.in))
		})
	}
}

package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muralianand12345/AI-API/internal/chunk"
	"github.com/muralianand12345/AI-API/internal/index"
)

var (
	// ErrStorage marks disk failures while persisting an upload.
	ErrStorage = errors.New("storage failed")
	// ErrEmptyDocument marks uploads with no extractable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// Loader extracts plain text from a stored document.
type Loader interface {
	LoadText(path string) (string, error)
}

// IngestResult reports a completed ingest.
type IngestResult struct {
	StoragePath    string
	StoredFilename string
	ChunkCount     int
}

// Store persists uploaded files under a per-user directory and routes their
// text through chunking into the user's vector index.
type Store struct {
	baseDir  string
	splitter *chunk.Splitter
	loader   Loader
	index    *index.Store
	topK     int
}

func NewStore(baseDir string, splitter *chunk.Splitter, loader Loader, idx *index.Store, topK int) (*Store, error) {
	if topK <= 0 {
		topK = index.DefaultTopK
	}
	baseDir = filepath.Join(baseDir, "pdfs")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create base dir: %v", ErrStorage, err)
	}
	return &Store{
		baseDir:  baseDir,
		splitter: splitter,
		loader:   loader,
		index:    idx,
		topK:     topK,
	}, nil
}

// Ingest writes the raw bytes to the user's directory, extracts and chunks
// the text, and inserts the chunks into the user's index. The stored file is
// removed again if any later step fails, so no success response ever
// references a half-processed file.
func (s *Store) Ingest(ctx context.Context, username string, raw []byte, originalFilename string) (*IngestResult, error) {
	userDir := filepath.Join(s.baseDir, sanitizeComponent(username))
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create user dir: %v", ErrStorage, err)
	}

	storedName := storedFilename(originalFilename)
	path := filepath.Join(userDir, storedName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("%w: write file: %v", ErrStorage, err)
	}

	text, err := s.loader.LoadText(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: extract text: %v", ErrStorage, err)
	}
	chunks := s.splitter.Split(strings.TrimSpace(text))
	if len(chunks) == 0 {
		_ = os.Remove(path)
		return nil, ErrEmptyDocument
	}

	if err := s.index.CreateOrInsert(ctx, username, storedName, chunks); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &IngestResult{
		StoragePath:    path,
		StoredFilename: storedName,
		ChunkCount:     len(chunks),
	}, nil
}

// Search returns the top-k chunk texts for the user's query.
func (s *Store) Search(ctx context.Context, username, query string) ([]string, error) {
	return s.index.Search(ctx, username, query, s.topK)
}

// Stats reports the user's index size.
func (s *Store) Stats(username string) index.Stats {
	return s.index.Stats(username)
}

// storedFilename prefixes the sanitized original name with a timestamp and a
// short random id, so concurrent uploads of the same file never collide.
func storedFilename(original string) string {
	name := sanitizeComponent(filepath.Base(original))
	if name == "" || name == "." {
		name = "upload.pdf"
	}
	stamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s", stamp, uuid.NewString()[:8], name)
}

// sanitizeComponent strips anything that could escape the user's directory.
func sanitizeComponent(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}

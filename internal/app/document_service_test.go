package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muralianand12345/AI-API/internal/docstore"
	"github.com/muralianand12345/AI-API/internal/index"
	"github.com/muralianand12345/AI-API/internal/model"
)

type fakeIngestor struct {
	result    *docstore.IngestResult
	err       error
	stats     index.Stats
	ingested  int
	lastBytes []byte
}

func (f *fakeIngestor) Ingest(ctx context.Context, username string, raw []byte, originalFilename string) (*docstore.IngestResult, error) {
	f.ingested++
	f.lastBytes = raw
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeIngestor) Stats(username string) index.Stats {
	return f.stats
}

type fakeRecorder struct {
	records []model.Upload
	err     error
}

func (f *fakeRecorder) Create(upload *model.Upload) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *upload)
	return nil
}

func (f *fakeRecorder) ListByUsername(username string) ([]model.Upload, error) {
	return f.records, nil
}

func TestUpload_RejectsNonPDFBeforeIngest(t *testing.T) {
	ing := &fakeIngestor{}
	svc := NewDocumentService(ing, nil)

	tests := []string{"notes.txt", "archive.zip", "report", "evil.pdf.exe"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), "alice", []byte("data"), name)
			assert.ErrorIs(t, err, ErrNotPDF)
		})
	}
	assert.Zero(t, ing.ingested, "rejected uploads must not reach the store")
}

func TestUpload_AcceptsPDFCaseInsensitive(t *testing.T) {
	ing := &fakeIngestor{result: &docstore.IngestResult{StoredFilename: "x_doc.PDF", ChunkCount: 2}}
	svc := NewDocumentService(ing, nil)

	result, err := svc.Upload(context.Background(), "alice", []byte("data"), "Doc.PDF")
	require.NoError(t, err)
	assert.Equal(t, "Doc.PDF", result.Filename)
	assert.Equal(t, 2, result.ChunksProcessed)
}

func TestUpload_RecordsUpload(t *testing.T) {
	ing := &fakeIngestor{result: &docstore.IngestResult{StoredFilename: "stored_notes.pdf", ChunkCount: 4}}
	rec := &fakeRecorder{}
	svc := NewDocumentService(ing, rec)

	_, err := svc.Upload(context.Background(), "alice", []byte("data"), "notes.pdf")
	require.NoError(t, err)

	require.Len(t, rec.records, 1)
	assert.Equal(t, "alice", rec.records[0].Username)
	assert.Equal(t, "notes.pdf", rec.records[0].OriginalName)
	assert.Equal(t, "stored_notes.pdf", rec.records[0].StoredFilename)
	assert.Equal(t, 4, rec.records[0].ChunkCount)
}

func TestUpload_RecordFailureDoesNotFailUpload(t *testing.T) {
	ing := &fakeIngestor{result: &docstore.IngestResult{ChunkCount: 1}}
	rec := &fakeRecorder{err: assert.AnError}
	svc := NewDocumentService(ing, rec)

	result, err := svc.Upload(context.Background(), "alice", []byte("data"), "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksProcessed)
}

func TestUpload_InvalidInput(t *testing.T) {
	svc := NewDocumentService(&fakeIngestor{}, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "", []byte("data"), "notes.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(ctx, "alice", nil, "notes.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStats(t *testing.T) {
	ing := &fakeIngestor{stats: index.Stats{TotalChunks: 7, HasIndex: true}}
	svc := NewDocumentService(ing, nil)

	stats, err := svc.Stats("alice")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalDocuments)
	assert.True(t, stats.HasEmbeddings)

	ing.stats = index.Stats{}
	stats, err = svc.Stats("bob")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.False(t, stats.HasEmbeddings)
}

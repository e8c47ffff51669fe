package app

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/muralianand12345/AI-API/internal/docstore"
	"github.com/muralianand12345/AI-API/internal/index"
	"github.com/muralianand12345/AI-API/internal/model"
)

// ErrNotPDF rejects uploads with the wrong file type before any I/O.
var ErrNotPDF = errors.New("only PDF files are allowed")

// DocumentIngestor persists and indexes uploaded documents.
type DocumentIngestor interface {
	Ingest(ctx context.Context, username string, raw []byte, originalFilename string) (*docstore.IngestResult, error)
	Stats(username string) index.Stats
}

// UploadRecorder keeps durable records of completed ingests.
type UploadRecorder interface {
	Create(upload *model.Upload) error
	ListByUsername(username string) ([]model.Upload, error)
}

type UploadResult struct {
	Filename        string
	ChunksProcessed int
}

type DocumentStats struct {
	TotalDocuments int
	HasEmbeddings  bool
}

// DocumentService exposes the upload/stats surface over the document store.
type DocumentService struct {
	store   DocumentIngestor
	uploads UploadRecorder
}

func NewDocumentService(store DocumentIngestor, uploads UploadRecorder) *DocumentService {
	return &DocumentService{store: store, uploads: uploads}
}

// Upload validates, persists, and indexes a PDF for the user.
func (s *DocumentService) Upload(ctx context.Context, username string, raw []byte, filename string) (*UploadResult, error) {
	if username == "" || len(raw) == 0 {
		return nil, ErrInvalidInput
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, ErrNotPDF
	}

	result, err := s.store.Ingest(ctx, username, raw, filename)
	if err != nil {
		return nil, err
	}

	if s.uploads != nil {
		record := &model.Upload{
			Username:       username,
			OriginalName:   filename,
			StoredFilename: result.StoredFilename,
			ChunkCount:     result.ChunkCount,
		}
		if err := s.uploads.Create(record); err != nil {
			// the document is already indexed; the record is bookkeeping
			log.Printf("record upload failed for %s: %v", username, err)
		}
	}

	return &UploadResult{
		Filename:        filename,
		ChunksProcessed: result.ChunkCount,
	}, nil
}

// Stats reports the user's cumulative index size.
func (s *DocumentService) Stats(username string) (*DocumentStats, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}
	stats := s.store.Stats(username)
	return &DocumentStats{
		TotalDocuments: stats.TotalChunks,
		HasEmbeddings:  stats.HasIndex,
	}, nil
}

// ListUploads returns the user's upload records.
func (s *DocumentService) ListUploads(username string) ([]model.Upload, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}
	if s.uploads == nil {
		return nil, nil
	}
	return s.uploads.ListByUsername(username)
}

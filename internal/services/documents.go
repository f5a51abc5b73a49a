package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/BerylCAtieno/eia-document-api/internal/extractor"
	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/queue"
	"github.com/BerylCAtieno/eia-document-api/internal/repository"
	"github.com/BerylCAtieno/eia-document-api/internal/storage"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
)

const (
	DefaultMaxFileSize = 500 << 20 // 500MB
	DefaultListLimit   = 50
	maxListLimit       = 500
)

type DocumentService interface {
	UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error)
	ListDocuments(ctx context.Context, limit int) ([]models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	OpenDocumentFile(ctx context.Context, id string) (*models.Document, io.ReadCloser, error)
	ListSearchResults(ctx context.Context, documentID string, limit int) ([]models.SearchResult, error)
}

type DocumentOptions struct {
	MaxFileSize            int64
	ExtractBinaryDocuments bool
}

type documentService struct {
	repo          repository.DocumentRepository
	searchResults repository.SearchResultRepository
	storage       storage.Storage
	queue         queue.Queue
	opts          DocumentOptions
	logger        *utils.Logger
	metrics       *metrics.Metrics
}

func NewDocumentService(
	repo repository.DocumentRepository,
	searchResults repository.SearchResultRepository,
	store storage.Storage,
	q queue.Queue,
	opts DocumentOptions,
	logger *utils.Logger,
	m *metrics.Metrics,
) DocumentService {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}

	return &documentService{
		repo:          repo,
		searchResults: searchResults,
		storage:       store,
		queue:         q,
		opts:          opts,
		logger:        logger,
		metrics:       m,
	}
}

func (s *documentService) UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	if req.File == nil {
		return nil, s.reject(utils.NewBadRequestError("No file provided"))
	}

	contentType := extractor.DetectContentType(req.Filename, req.ContentType)
	if !extractor.IsAllowed(contentType) {
		s.logger.Warn("Unsupported content type", "content_type", contentType, "filename", req.Filename)
		return nil, s.reject(utils.NewBadRequestError(fmt.Sprintf(
			"Unsupported file type '%s'. Allowed types are PDF, DOC, DOCX, HTML and plain text", contentType)))
	}

	if req.Size > s.opts.MaxFileSize {
		return nil, s.reject(utils.NewBadRequestError(fmt.Sprintf(
			"File size exceeds %dMB limit", s.opts.MaxFileSize>>20)))
	}
	if req.Size == 0 {
		return nil, s.reject(utils.NewBadRequestError("Uploaded file is empty"))
	}

	content, err := s.extractContent(req, contentType)
	if err != nil {
		s.logger.Error("Failed to read upload", "error", err, "filename", req.Filename)
		return nil, utils.NewInternalError("Failed to read file")
	}

	docID := utils.GenerateID()
	storedName := storedFileName(req.Filename)
	storageKey := fmt.Sprintf("documents/%s/%s", docID, storedName)

	if _, err := req.File.Seek(0, io.SeekStart); err != nil {
		s.logger.Error("Failed to rewind upload", "error", err, "filename", req.Filename)
		return nil, utils.NewInternalError("Failed to read file")
	}
	if err := s.storage.Upload(ctx, storageKey, req.File, req.Size, contentType); err != nil {
		s.logger.Error("Failed to upload to storage", "error", err, "storage_key", storageKey)
		s.metrics.RecordUpload("failed")
		return nil, utils.NewInternalError("Failed to store document")
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:               docID,
		Title:            documentTitle(req.Title, req.Filename),
		Description:      optionalString(req.Description),
		FileName:         storedName,
		OriginalFilename: req.Filename,
		ContentType:      contentType,
		FileSize:         req.Size,
		Content:          &content,
		StoragePath:      storageKey,
		Status:           models.DocumentStatusCompleted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to save document to database", "error", err, "doc_id", docID)
		if delErr := s.storage.Delete(ctx, storageKey); delErr != nil {
			s.logger.Warn("Failed to clean up stored file", "error", delErr, "storage_key", storageKey)
		}
		s.metrics.RecordUpload("failed")
		return nil, utils.NewInternalError("Failed to save document metadata")
	}

	job := queue.NewAnalysisJob(docID)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("Failed to enqueue analysis job", "error", err, "doc_id", docID)
		s.metrics.RecordJob("enqueue_failed")
	} else {
		s.metrics.RecordJob("enqueued")
	}

	s.metrics.RecordUpload("accepted")
	s.logger.Info("Document uploaded successfully",
		"id", docID,
		"filename", req.Filename,
		"content_type", contentType,
		"text_length", len(content))

	return &models.UploadResponse{
		Success:  true,
		Document: doc,
		Message:  "Document uploaded successfully. Analysis has been queued.",
	}, nil
}

func (s *documentService) reject(err *utils.AppError) error {
	s.metrics.RecordUpload("rejected")
	return err
}

// extractContent reads text uploads into memory. PDF and DOCX are parsed in
// place when extraction is enabled; other files get the placeholder.
func (s *documentService) extractContent(req *models.UploadRequest, contentType string) (string, error) {
	if extractor.IsText(contentType) {
		data, err := io.ReadAll(io.LimitReader(req.File, s.opts.MaxFileSize+1))
		if err != nil {
			return "", err
		}
		return extractor.TextContent(data), nil
	}

	if !s.opts.ExtractBinaryDocuments {
		return extractor.Placeholder(req.Filename), nil
	}

	text := extractor.ExtractBinary(contentType, req.Filename, req.File, req.Size)
	if text == extractor.Placeholder(req.Filename) {
		s.logger.Warn("Binary extraction produced no text", "filename", req.Filename, "content_type", contentType)
	}
	return text, nil
}

func (s *documentService) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	docs, err := s.repo.List(ctx, clampLimit(limit))
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err)
		return nil, utils.NewInternalError("Failed to list documents")
	}
	return docs, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return nil, utils.NewNotFoundError("Document not found")
	}

	return doc, nil
}

func (s *documentService) OpenDocumentFile(ctx context.Context, id string) (*models.Document, io.ReadCloser, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Download(ctx, doc.StoragePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, utils.NewNotFoundError("Document file not found")
	}
	if err != nil {
		s.logger.Error("Failed to download document", "error", err, "id", id, "storage_key", doc.StoragePath)
		return nil, nil, utils.NewInternalError("Failed to retrieve document file")
	}

	return doc, rc, nil
}

func (s *documentService) ListSearchResults(ctx context.Context, documentID string, limit int) ([]models.SearchResult, error) {
	results, err := s.searchResults.List(ctx, documentID, clampLimit(limit))
	if err != nil {
		s.logger.Error("Failed to list search results", "error", err, "document_id", documentID)
		return nil, utils.NewInternalError("Failed to list search results")
	}
	return results, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// storedFileName keeps the original base name but replaces anything that is
// awkward in an object key.
func storedFileName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return "document"
	}
	return cleaned
}

func documentTitle(title, filename string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(filename)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		return name
	}
	return "Untitled document"
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

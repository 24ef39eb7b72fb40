package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/metrics"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
	"github.com/stemsi/faculty-backend/internal/storage"
)

const dateLayout = "2006-01-02"

// Upload is a file received with a create request.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// DocumentService handles one kind of uploaded course document. Assignments
// and notes each get their own instance.
type DocumentService struct {
	kind     model.DocumentKind
	repo     *repository.DocumentRepository
	files    *storage.FileStore
	stats    *cache.StatsCache
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

// NewDocumentService creates a DocumentService for kind.
func NewDocumentService(
	kind model.DocumentKind,
	repo *repository.DocumentRepository,
	files *storage.FileStore,
	stats *cache.StatsCache,
	maxBytes int64,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		kind:     kind,
		repo:     repo,
		files:    files,
		stats:    stats,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log.With().Str("component", string(kind)+"_service").Logger(),
	}
}

// Kind returns the document kind this service manages.
func (s *DocumentService) Kind() model.DocumentKind {
	return s.kind
}

// List returns every document, newest upload first unless q says otherwise.
func (s *DocumentService) List(ctx context.Context, q model.ListQuery) ([]model.Document, error) {
	docs, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int) (*model.Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	return d, translate(err)
}

// Create stores the uploaded file and records it with today's upload date.
// If the record cannot be written the stored file is removed again.
func (s *DocumentService) Create(ctx context.Context, req model.DocumentRequest, up *Upload) (*model.Document, error) {
	if err := requireFields("title", req.Title, "year", req.Year, "subject", req.Subject); err != nil {
		return nil, err
	}

	if up == nil || up.Filename == "" {
		s.reject()
		return nil, ErrFileRequired
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		s.reject()
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, up.Size, s.maxBytes)
	}
	name := storage.SecureFilename(up.Filename)
	if !storage.Allowed(name) {
		s.reject()
		return nil, fmt.Errorf("%w: %q", ErrFileTypeNotAllowed, up.Filename)
	}

	name, err := s.files.Save(up.Content, name)
	if err != nil {
		metrics.Uploads.WithLabelValues(string(s.kind), metrics.ResultFailed).Inc()
		return nil, fmt.Errorf("save upload: %w", err)
	}

	d := &model.Document{
		Title:       req.Title,
		Year:        req.Year,
		Subject:     req.Subject,
		Filename:    name,
		UploadDate:  s.now().Format(dateLayout),
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		if rmErr := s.files.Delete(name); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("filename", name).Msg("Failed to remove orphaned upload")
		}
		metrics.Uploads.WithLabelValues(string(s.kind), metrics.ResultFailed).Inc()
		return nil, err
	}
	s.stats.Invalidate(ctx)

	metrics.Uploads.WithLabelValues(string(s.kind), metrics.ResultOK).Inc()
	metrics.UploadBytes.WithLabelValues(string(s.kind)).Add(float64(up.Size))
	s.log.Info().
		Int("id", d.ID).
		Str("filename", name).
		Int64("size", up.Size).
		Msg("Document uploaded")
	return d, nil
}

// Update edits a document's metadata. The stored file is not replaced.
func (s *DocumentService) Update(ctx context.Context, id int, req model.DocumentRequest) (*model.Document, error) {
	if err := requireFields("title", req.Title, "year", req.Year, "subject", req.Subject); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	d.Title = req.Title
	d.Year = req.Year
	d.Subject = req.Subject
	d.Description = req.Description

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// Delete removes the document and, best effort, its backing file. A file
// that cannot be removed is logged and does not stop the delete.
func (s *DocumentService) Delete(ctx context.Context, id int) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}

	if err := s.files.Delete(d.Filename); err != nil {
		metrics.FileDeleteFailures.Inc()
		s.log.Warn().Err(err).Str("filename", d.Filename).Msg("Failed to remove backing file")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.stats.Invalidate(ctx)
	return nil
}

func (s *DocumentService) reject() {
	metrics.Uploads.WithLabelValues(string(s.kind), metrics.ResultRejected).Inc()
}

package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uniportal/degree-import-api/internal/models"
	"github.com/uniportal/degree-import-api/pkg/export"
	"github.com/uniportal/degree-import-api/pkg/storage"
)

type appliedSessionLoader interface {
	AppliedSession(ctx context.Context, sessionID string) (*models.ImportSession, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, summary []string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders import outcome reports and persists the files.
type ExportService struct {
	sessions appliedSessionLoader
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sessions appliedSessionLoader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		sessions: sessions,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate builds the outcome dataset for a job and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	session, err := s.sessions.AppliedSession(ctx, job.Params.SessionID)
	if err != nil {
		return nil, err
	}

	dataset, title, summary := buildOutcomeDataset(session)

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title, summary)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := buildExportFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildOutcomeDataset(session *models.ImportSession) (export.Dataset, string, []string) {
	dataset := export.Dataset{
		Headers: []string{"Matric No", "Student Name", "Previous Class", "Approved Class", "Confidence", "Applied"},
	}
	for _, record := range session.ReviewData {
		previous := ""
		if record.CurrentClassOfDegree != nil {
			previous = *record.CurrentClassOfDegree
		}
		applied := "no"
		if record.Approved {
			applied = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Matric No":      record.MatricNo,
			"Student Name":   record.StudentName,
			"Previous Class": previous,
			"Approved Class": record.ProposedClassOfDegree,
			"Confidence":     string(record.MatchConfidence),
			"Applied":        applied,
		})
	}

	title := fmt.Sprintf("Import Outcome - %s", session.OriginalFilename)
	summary := []string{
		fmt.Sprintf("Source document: %s", session.OriginalFilename),
		fmt.Sprintf("Records extracted: %d, matched: %d", session.Summary.TotalExtracted, session.Summary.TotalMatched),
	}
	if session.Result != nil {
		summary = append(summary,
			fmt.Sprintf("Updated: %d, failed: %d", session.Result.UpdatedCount, session.Result.ErrorCount),
			fmt.Sprintf("Applied at: %s", session.Result.AppliedAt.Format(time.RFC3339)))
	}
	return dataset, title, summary
}

func buildExportFilename(job *models.ReportJob) string {
	sessionTag := job.Params.SessionID
	if len(sessionTag) > 8 {
		sessionTag = sessionTag[:8]
	}
	return fmt.Sprintf("import_outcome_%s_%d.%s", sessionTag, time.Now().UTC().Unix(), job.Params.Format)
}

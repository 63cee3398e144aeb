package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniportal/degree-import-api/internal/models"
	"github.com/uniportal/degree-import-api/internal/repository"
	appErrors "github.com/uniportal/degree-import-api/pkg/errors"
)

type documentExtractor interface {
	Extract(data []byte) ([]models.ExtractedRow, error)
}

type recordMatcher interface {
	Match(ctx context.Context, rows []models.ExtractedRow) ([]models.ReviewRecord, models.SessionSummary, error)
}

type importSessionStore interface {
	Save(ctx context.Context, session *models.ImportSession) error
	Get(ctx context.Context, sessionID string) (*models.ImportSession, error)
	Delete(ctx context.Context, sessionID string) error
}

type degreeUpdater interface {
	UpdateClassOfDegree(ctx context.Context, studentID int64, classOfDegree string) error
}

type uploadArchive interface {
	Save(filename string, data []byte) (string, error)
}

type importAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ImportServiceConfig tunes upload limits and session lifetime.
type ImportServiceConfig struct {
	MaxFileSizeBytes int64
	SessionTTL       time.Duration
}

// ImportUpload is the raw upload handed over by the transport layer.
type ImportUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ImportService owns the document import workflow: gate the upload, extract
// and match records, hold them in a time-boxed session, then apply the
// reviewer's approved subset to the register.
type ImportService struct {
	extractor documentExtractor
	matcher   recordMatcher
	sessions  importSessionStore
	students  degreeUpdater
	archive   uploadArchive
	audit     importAuditor
	logger    *zap.Logger
	cfg       ImportServiceConfig
}

// NewImportService constructs an ImportService.
func NewImportService(extractor documentExtractor, matcher recordMatcher, sessions importSessionStore, students degreeUpdater, archive uploadArchive, audit importAuditor, cfg ImportServiceConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &ImportService{
		extractor: extractor,
		matcher:   matcher,
		sessions:  sessions,
		students:  students,
		archive:   archive,
		audit:     audit,
		logger:    logger,
		cfg:       cfg,
	}
}

// Upload validates and processes a document, creating a review session. The
// session id it returns is the handle for the subsequent fetch and approval
// calls.
func (s *ImportService) Upload(ctx context.Context, upload ImportUpload, actor *models.JWTClaims) (*models.ImportSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := validateUpload(upload, s.cfg.MaxFileSizeBytes); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, s.cfg.MaxFileSizeBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file")
	}
	if int64(len(data)) > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxFileSizeBytes/(1024*1024)))
	}

	rows, err := s.extractor.Extract(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "document could not be processed")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, "no candidate records found in document")
	}

	records, summary, err := s.matcher.Match(ctx, rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to match extracted records")
	}

	now := time.Now().UTC()
	session := &models.ImportSession{
		SessionID:        uuid.NewString(),
		OriginalFilename: upload.Filename,
		Summary:          summary,
		ReviewData:       records,
		CreatedBy:        actor.UserID,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.cfg.SessionTTL),
	}

	if s.archive != nil {
		archiveName := fmt.Sprintf("%s_%s", session.SessionID, sanitizeFilename(upload.Filename))
		path, archiveErr := s.archive.Save(archiveName, data)
		if archiveErr != nil {
			s.logger.Warn("failed to archive uploaded document", zap.Error(archiveErr))
		} else {
			session.ArchivePath = path
		}
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store import session")
	}

	s.recordAudit(ctx, actor, models.AuditActionImportUpload, session.SessionID, map[string]interface{}{
		"filename":        upload.Filename,
		"total_extracted": summary.TotalExtracted,
		"total_matched":   summary.TotalMatched,
	})

	s.logger.Info("import session created",
		zap.String("session_id", session.SessionID),
		zap.Int("extracted", summary.TotalExtracted),
		zap.Int("matched", summary.TotalMatched))

	return session, nil
}

// FetchSession returns a live session's review payload.
func (s *ImportService) FetchSession(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Result != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import session already applied")
	}
	return session, nil
}

// SubmitApprovals applies the approved subset of a session's records to the
// register. Per-record failures do not abort the batch; the outcome reports
// updated and failed counts side by side. A session that produced at least
// one update is consumed and cannot be replayed.
func (s *ImportService) SubmitApprovals(ctx context.Context, sessionID string, decisions []models.ApprovalDecision, actor *models.JWTClaims) (*models.UpdateOutcome, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if len(decisions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "approvals are required")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Result != nil {
		return nil, appErrors.Clone(appErrors.ErrSessionConsumed, "import session already applied")
	}

	byMatric := make(map[string]*models.ReviewRecord, len(session.ReviewData))
	for i := range session.ReviewData {
		byMatric[session.ReviewData[i].MatricNo] = &session.ReviewData[i]
	}

	approved := 0
	outcome := &models.UpdateOutcome{Errors: []string{}}
	for _, decision := range decisions {
		if !decision.Approved {
			continue
		}
		approved++

		record, ok := byMatric[decision.MatricNo]
		if !ok {
			outcome.ErrorCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: not part of this session", decision.MatricNo))
			continue
		}
		if !record.NeedsUpdate {
			// Informational record, nothing to write.
			continue
		}

		if err := s.students.UpdateClassOfDegree(ctx, record.StudentID, record.ProposedClassOfDegree); err != nil {
			s.logger.Warn("class of degree update failed",
				zap.String("matric_no", record.MatricNo),
				zap.Error(err))
			outcome.ErrorCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: update failed", record.MatricNo))
			continue
		}
		record.Approved = true
		outcome.UpdatedCount++
	}

	if approved == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoApprovals, "no records approved for update")
	}

	outcome.AppliedAt = time.Now().UTC()

	if outcome.UpdatedCount > 0 {
		// Consume the session: keep the payload around for outcome
		// reporting but refuse further fetches and applies.
		session.Result = outcome
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.Warn("failed to mark session consumed", zap.String("session_id", session.SessionID), zap.Error(err))
		}
	}

	s.recordAudit(ctx, actor, models.AuditActionImportApply, session.SessionID, map[string]interface{}{
		"updated_count": outcome.UpdatedCount,
		"error_count":   outcome.ErrorCount,
	})

	s.logger.Info("import session applied",
		zap.String("session_id", session.SessionID),
		zap.Int("updated", outcome.UpdatedCount),
		zap.Int("errors", outcome.ErrorCount))

	return outcome, nil
}

// AppliedSession loads a consumed session for outcome reporting.
func (s *ImportService) AppliedSession(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "import session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import session")
	}
	if session.Result == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import session has not been applied")
	}
	return session, nil
}

func (s *ImportService) loadSession(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "import session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import session")
	}

	if session.Result == nil && time.Now().UTC().After(session.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "import session has expired, upload the document again")
	}
	return session, nil
}

func (s *ImportService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, sessionID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		payload = []byte("{}")
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "import_session",
		ResourceID: &sessionID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record import audit log", zap.Error(err))
	}
}

func validateUpload(upload ImportUpload, maxSize int64) error {
	if upload.Content == nil || upload.Size == 0 {
		return appErrors.Clone(appErrors.ErrUploadFailed, "a file is required")
	}
	if upload.Size < 0 || upload.Size > maxSize {
		return appErrors.Clone(appErrors.ErrUploadFailed, fmt.Sprintf("file exceeds the %d MB limit", maxSize/(1024*1024)))
	}
	if !strings.EqualFold(strings.TrimSpace(filepathExt(upload.Filename)), ".docx") {
		return appErrors.Clone(appErrors.ErrUploadFailed, "only .docx documents are accepted")
	}
	return nil
}

func filepathExt(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	return replacer.Replace(name)
}

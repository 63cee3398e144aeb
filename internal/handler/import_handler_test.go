package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/uniportal/degree-import-api/internal/dto"
	"github.com/uniportal/degree-import-api/internal/middleware"
	"github.com/uniportal/degree-import-api/internal/models"
	"github.com/uniportal/degree-import-api/internal/repository"
	"github.com/uniportal/degree-import-api/internal/service"
)

type extractorStub struct {
	rows []models.ExtractedRow
}

func (s *extractorStub) Extract(data []byte) ([]models.ExtractedRow, error) {
	return s.rows, nil
}

type matcherStub struct {
	records []models.ReviewRecord
	summary models.SessionSummary
}

func (s *matcherStub) Match(ctx context.Context, rows []models.ExtractedRow) ([]models.ReviewRecord, models.SessionSummary, error) {
	return s.records, s.summary, nil
}

type sessionStoreStub struct {
	sessions map[string]*models.ImportSession
}

func (s *sessionStoreStub) Save(ctx context.Context, session *models.ImportSession) error {
	clone := *session
	s.sessions[session.SessionID] = &clone
	return nil
}

func (s *sessionStoreStub) Get(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *sessionStoreStub) Delete(ctx context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type updaterStub struct{}

func (s *updaterStub) UpdateClassOfDegree(ctx context.Context, studentID int64, classOfDegree string) error {
	return nil
}

func importTestRouter(store *sessionStoreStub, records []models.ReviewRecord) *gin.Engine {
	gin.SetMode(gin.TestMode)

	extractor := &extractorStub{rows: []models.ExtractedRow{{MatricNo: "ABC/12/0001", ClassOfDegree: "First Class"}}}
	matcher := &matcherStub{
		records: records,
		summary: models.SessionSummary{TotalExtracted: len(records), TotalMatched: len(records), ReadyForReview: len(records)},
	}
	svc := service.NewImportService(extractor, matcher, store, &updaterStub{}, nil, nil, service.ImportServiceConfig{}, nil)
	h := NewImportHandler(svc, nil, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	})
	router.POST("/imports/upload", h.Upload)
	router.GET("/imports/sessions/:id", h.GetSession)
	router.POST("/imports/sessions/:id/approvals", h.SubmitApprovals)
	return router
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func liveSession() *models.ImportSession {
	return &models.ImportSession{
		SessionID:        "sess-1",
		OriginalFilename: "results.docx",
		Summary:          models.SessionSummary{TotalExtracted: 1, TotalMatched: 1, ReadyForReview: 1},
		ReviewData: []models.ReviewRecord{
			{StudentID: 1, MatricNo: "ABC/12/0001", StudentName: "Ada", ProposedClassOfDegree: "First Class", MatchConfidence: models.MatchExact, NeedsUpdate: true},
		},
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

func TestImportHandlerUpload(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{}}
	router := importTestRouter(store, liveSession().ReviewData)

	body, contentType := multipartUpload(t, "results.docx", []byte("PK fake docx"))
	req := httptest.NewRequest(http.MethodPost, "/imports/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.SessionID)
	require.Equal(t, 1, resp.Summary.TotalMatched)
	require.Contains(t, store.sessions, resp.SessionID)
}

func TestImportHandlerUploadMissingFile(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{}}
	router := importTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodPost, "/imports/upload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ImportError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "a file is required", resp.Message)
}

func TestImportHandlerUploadWrongExtension(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{}}
	router := importTestRouter(store, nil)

	body, contentType := multipartUpload(t, "results.pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/imports/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ImportError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Message, ".docx")
}

func TestImportHandlerGetSession(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{"sess-1": liveSession()}}
	router := importTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/imports/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "results.docx", resp.OriginalFilename)
	require.Len(t, resp.ReviewData, 1)
}

func TestImportHandlerGetSessionNotFound(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{}}
	router := importTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/imports/sessions/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp dto.ImportError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
}

func TestImportHandlerGetSessionExpired(t *testing.T) {
	expired := liveSession()
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{"sess-1": expired}}
	router := importTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/imports/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusGone, rec.Code)
}

func TestImportHandlerSubmitApprovals(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{"sess-1": liveSession()}}
	router := importTestRouter(store, nil)

	payload, err := json.Marshal(dto.SubmitApprovalsRequest{
		SessionID: "sess-1",
		Approvals: []models.ApprovalDecision{
			{StudentID: 1, MatricNo: "ABC/12/0001", ProposedClassOfDegree: "First Class", Approved: true},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/imports/sessions/sess-1/approvals", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.SubmitApprovalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 1, resp.Result.UpdatedCount)
	require.Zero(t, resp.Result.ErrorCount)
}

func TestImportHandlerSubmitApprovalsSessionMismatch(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{"sess-1": liveSession()}}
	router := importTestRouter(store, nil)

	payload, err := json.Marshal(dto.SubmitApprovalsRequest{
		SessionID: "sess-2",
		Approvals: []models.ApprovalDecision{{MatricNo: "ABC/12/0001", Approved: true}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/imports/sessions/sess-1/approvals", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ImportError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "session id mismatch", resp.Message)
}

func TestImportHandlerSubmitApprovalsConsumedSession(t *testing.T) {
	consumed := liveSession()
	consumed.Result = &models.UpdateOutcome{UpdatedCount: 1}
	store := &sessionStoreStub{sessions: map[string]*models.ImportSession{"sess-1": consumed}}
	router := importTestRouter(store, nil)

	payload, err := json.Marshal(dto.SubmitApprovalsRequest{
		Approvals: []models.ApprovalDecision{{MatricNo: "ABC/12/0001", Approved: true}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/imports/sessions/sess-1/approvals", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

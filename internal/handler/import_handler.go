package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniportal/degree-import-api/internal/dto"
	"github.com/uniportal/degree-import-api/internal/service"
	appErrors "github.com/uniportal/degree-import-api/pkg/errors"
)

// ImportHandler wires the document import workflow endpoints. Unlike the
// administrative routes these answer with the portal's flat wire contract:
// success/message bodies with snake_case fields.
type ImportHandler struct {
	service *service.ImportService
	metrics *service.MetricsService
	logger  *zap.Logger
}

// NewImportHandler creates a new handler.
func NewImportHandler(svc *service.ImportService, metrics *service.MetricsService, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{service: svc, metrics: metrics, logger: logger}
}

// Upload godoc
// @Summary Upload a class-of-degree correction document
// @Description Accepts a .docx document, extracts candidate records and opens a review session
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Word document"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} dto.ImportError
// @Security BearerAuth
// @Router /imports/upload [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		importError(c, appErrors.Clone(appErrors.ErrUploadFailed, "a file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		importError(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	session, err := h.service.Upload(c.Request.Context(), service.ImportUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	}, claims)
	if err != nil {
		importError(c, err)
		return
	}

	h.metrics.RecordSessionCreated()

	c.JSON(http.StatusCreated, dto.UploadResponse{
		Success:   true,
		SessionID: session.SessionID,
		Summary:   session.Summary,
	})
}

// GetSession godoc
// @Summary Fetch a review session
// @Description Returns the extracted and matched records awaiting approval
// @Tags Imports
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ImportError
// @Failure 410 {object} dto.ImportError
// @Security BearerAuth
// @Router /imports/sessions/{id} [get]
func (h *ImportHandler) GetSession(c *gin.Context) {
	session, err := h.service.FetchSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		importError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		Success:          true,
		SessionID:        session.SessionID,
		OriginalFilename: session.OriginalFilename,
		Summary:          session.Summary,
		ReviewData:       session.ReviewData,
		ExpiresAt:        session.ExpiresAt,
	})
}

// SubmitApprovals godoc
// @Summary Apply approved records
// @Description Applies the approved subset of a session's records to the student register
// @Tags Imports
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body dto.SubmitApprovalsRequest true "Approval decisions"
// @Success 200 {object} dto.SubmitApprovalsResponse
// @Failure 400 {object} dto.ImportError
// @Failure 404 {object} dto.ImportError
// @Failure 410 {object} dto.ImportError
// @Security BearerAuth
// @Router /imports/sessions/{id}/approvals [post]
func (h *ImportHandler) SubmitApprovals(c *gin.Context) {
	claims := claimsFromContext(c)
	sessionID := c.Param("id")

	var req dto.SubmitApprovalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		importError(c, appErrors.Clone(appErrors.ErrValidation, "invalid approvals payload"))
		return
	}
	if req.SessionID != "" && req.SessionID != sessionID {
		importError(c, appErrors.Clone(appErrors.ErrValidation, "session id mismatch"))
		return
	}

	outcome, err := h.service.SubmitApprovals(c.Request.Context(), sessionID, req.Approvals, claims)
	if err != nil {
		importError(c, err)
		return
	}

	h.metrics.RecordApplyOutcome(outcome.UpdatedCount, outcome.ErrorCount)

	c.JSON(http.StatusOK, dto.SubmitApprovalsResponse{
		Success: true,
		Result: dto.UpdateResultPayload{
			UpdatedCount: outcome.UpdatedCount,
			ErrorCount:   outcome.ErrorCount,
			Errors:       outcome.Errors,
		},
	})
}

// importError renders the flat error body the portal expects.
func importError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, dto.ImportError{Success: false, Message: appErr.Message})
}

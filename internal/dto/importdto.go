package dto

import (
	"time"

	"github.com/uniportal/degree-import-api/internal/models"
)

// The import endpoints speak the portal wire contract directly: flat
// success/message bodies with snake_case fields, rather than the
// administrative response envelope.

// UploadResponse acknowledges a processed document upload.
type UploadResponse struct {
	Success   bool                  `json:"success"`
	SessionID string                `json:"session_id"`
	Summary   models.SessionSummary `json:"summary"`
}

// SessionResponse returns the full review payload for a session.
type SessionResponse struct {
	Success          bool                  `json:"success"`
	SessionID        string                `json:"session_id"`
	OriginalFilename string                `json:"original_filename"`
	Summary          models.SessionSummary `json:"summary"`
	ReviewData       []models.ReviewRecord `json:"review_data"`
	ExpiresAt        time.Time             `json:"expires_at"`
}

// SubmitApprovalsRequest carries the complete decision set for a session.
type SubmitApprovalsRequest struct {
	SessionID string                    `json:"session_id"`
	Approvals []models.ApprovalDecision `json:"approvals"`
}

// SubmitApprovalsResponse reports the batch apply outcome.
type SubmitApprovalsResponse struct {
	Success bool               `json:"success"`
	Result  UpdateResultPayload `json:"result"`
}

// UpdateResultPayload mirrors the outcome counts on the wire.
type UpdateResultPayload struct {
	UpdatedCount int      `json:"updated_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

// ImportError is the flat error body used by the import endpoints.
type ImportError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

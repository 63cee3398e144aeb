package dto

import (
	"time"

	"github.com/uniportal/degree-import-api/internal/models"
)

// ReportRequest asks for an outcome report over an applied import session.
type ReportRequest struct {
	SessionID string              `json:"session_id"`
	Format    models.ReportFormat `json:"format"`
}

// ReportJobResponse acknowledges an accepted report job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress and the signed download URL once
// finished.
type ReportStatusResponse struct {
	ID           string              `json:"id"`
	Type         models.ReportType   `json:"type"`
	Status       models.ReportStatus `json:"status"`
	Progress     int                 `json:"progress"`
	ResultURL    *string             `json:"result_url,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}

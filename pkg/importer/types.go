package importer

import "time"

// MatchConfidence describes how a document row was matched to a student.
type MatchConfidence string

const (
	MatchExact   MatchConfidence = "exact"
	MatchPartial MatchConfidence = "partial"
)

// RecordSource tags the extraction provenance of a record.
type RecordSource string

const (
	SourceTable RecordSource = "table"
	SourceText  RecordSource = "text"
)

// SessionSummary carries the counts reported by the upload step.
type SessionSummary struct {
	TotalExtracted int `json:"total_extracted"`
	TotalMatched   int `json:"total_matched"`
	ReadyForReview int `json:"ready_for_review"`
}

// ReviewRecord is one candidate update awaiting a reviewer's verdict.
// MatricNo is unique within a session and is the key used by the ledger.
type ReviewRecord struct {
	StudentID             int64           `json:"student_id"`
	MatricNo              string          `json:"matric_no"`
	StudentName           string          `json:"student_name"`
	CurrentClassOfDegree  *string         `json:"current_class_of_degree"`
	ProposedClassOfDegree string          `json:"proposed_class_of_degree"`
	MatchConfidence       MatchConfidence `json:"match_confidence"`
	NeedsUpdate           bool            `json:"needs_update"`
	Approved              bool            `json:"approved"`
	Source                RecordSource    `json:"source"`
	RowNumber             *int            `json:"row_number,omitempty"`
}

// Session is the review payload fetched from the service.
type Session struct {
	SessionID        string         `json:"session_id"`
	OriginalFilename string         `json:"original_filename"`
	Summary          SessionSummary `json:"summary"`
	ReviewData       []ReviewRecord `json:"review_data"`
	ExpiresAt        time.Time      `json:"expires_at"`
}

// UploadResult acknowledges a processed upload.
type UploadResult struct {
	SessionID string         `json:"session_id"`
	Summary   SessionSummary `json:"summary"`
}

// ApprovalDecision is the verdict for one record at commit time.
type ApprovalDecision struct {
	StudentID             int64  `json:"student_id"`
	MatricNo              string `json:"matric_no"`
	ProposedClassOfDegree string `json:"proposed_class_of_degree"`
	Approved              bool   `json:"approved"`
}

// UpdateResult reports what a batch apply actually changed.
type UpdateResult struct {
	UpdatedCount int      `json:"updated_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

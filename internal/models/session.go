package models

import "time"

// MatchConfidence describes how a document row was matched to a student.
type MatchConfidence string

const (
	MatchExact   MatchConfidence = "exact"
	MatchPartial MatchConfidence = "partial"
)

// RecordSource tags the extraction provenance of a document row.
type RecordSource string

const (
	SourceTable RecordSource = "table"
	SourceText  RecordSource = "text"
)

// ExtractedRow is one candidate update pulled out of the uploaded document
// before matching.
type ExtractedRow struct {
	MatricNo      string       `json:"matric_no"`
	ClassOfDegree string       `json:"class_of_degree"`
	Source        RecordSource `json:"source"`
	RowNumber     *int         `json:"row_number,omitempty"`
}

// SessionSummary carries the coarse counts produced by extraction + matching.
type SessionSummary struct {
	TotalExtracted int `json:"total_extracted"`
	TotalMatched   int `json:"total_matched"`
	ReadyForReview int `json:"ready_for_review"`
}

// ReviewRecord is one candidate student update awaiting human approval.
// MatricNo is the mutation key and unique within a session.
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

// ImportSession is the time-boxed container for one upload's extracted and
// matched records, held in Redis until approved or expired.
type ImportSession struct {
	SessionID        string          `json:"session_id"`
	OriginalFilename string          `json:"original_filename"`
	ArchivePath      string          `json:"archive_path,omitempty"`
	Summary          SessionSummary  `json:"summary"`
	ReviewData       []ReviewRecord  `json:"review_data"`
	Result           *UpdateOutcome  `json:"result,omitempty"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	ExpiresAt        time.Time       `json:"expires_at"`
}

// ApprovalDecision is the reviewer's verdict for one record at commit time.
type ApprovalDecision struct {
	StudentID             int64  `json:"student_id"`
	MatricNo              string `json:"matric_no"`
	ProposedClassOfDegree string `json:"proposed_class_of_degree"`
	Approved              bool   `json:"approved"`
}

// UpdateOutcome reports what a batch apply actually changed. A non-zero
// ErrorCount alongside a non-zero UpdatedCount is a partial success, not an
// error.
type UpdateOutcome struct {
	UpdatedCount int      `json:"updated_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
	AppliedAt    time.Time `json:"applied_at"`
}

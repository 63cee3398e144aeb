package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/uniportal/degree-import-api/internal/models"
)

type matchStudentFinder interface {
	FindByMatricNos(ctx context.Context, matricNos []string) ([]models.Student, error)
	FindByNormalizedMatric(ctx context.Context, normalized string) (*models.Student, error)
}

// MatchService reconciles extracted document rows against the student
// register. Exact matric matches carry exact confidence; matches found only
// after separator and case normalisation are flagged partial so reviewers
// look twice before approving.
type MatchService struct {
	students matchStudentFinder
	logger   *zap.Logger
}

// NewMatchService constructs a MatchService.
func NewMatchService(students matchStudentFinder, logger *zap.Logger) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{students: students, logger: logger}
}

// Match resolves extracted rows to review records. Rows sharing a matric
// number collapse onto the first occurrence, and rows with no matching
// student are counted but dropped from the review set.
func (s *MatchService) Match(ctx context.Context, rows []models.ExtractedRow) ([]models.ReviewRecord, models.SessionSummary, error) {
	summary := models.SessionSummary{TotalExtracted: len(rows)}

	deduped := make([]models.ExtractedRow, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.MatricNo]; dup {
			continue
		}
		seen[row.MatricNo] = struct{}{}
		deduped = append(deduped, row)
	}

	matrics := make([]string, 0, len(deduped))
	for _, row := range deduped {
		matrics = append(matrics, row.MatricNo)
	}

	students, err := s.students.FindByMatricNos(ctx, matrics)
	if err != nil {
		return nil, summary, err
	}
	byMatric := make(map[string]models.Student, len(students))
	for _, st := range students {
		byMatric[st.MatricNo] = st
	}

	records := make([]models.ReviewRecord, 0, len(deduped))
	for _, row := range deduped {
		student, confidence, err := s.resolve(ctx, row, byMatric)
		if err != nil {
			return nil, summary, err
		}
		if student == nil {
			s.logger.Debug("no student for extracted row", zap.String("matric_no", row.MatricNo))
			continue
		}

		records = append(records, models.ReviewRecord{
			StudentID:             student.ID,
			MatricNo:              student.MatricNo,
			StudentName:           student.FullName,
			CurrentClassOfDegree:  student.ClassOfDegree,
			ProposedClassOfDegree: row.ClassOfDegree,
			MatchConfidence:       confidence,
			NeedsUpdate:           needsUpdate(student.ClassOfDegree, row.ClassOfDegree),
			Source:                row.Source,
			RowNumber:             row.RowNumber,
		})
	}

	summary.TotalMatched = len(records)
	summary.ReadyForReview = len(records)
	return records, summary, nil
}

func (s *MatchService) resolve(ctx context.Context, row models.ExtractedRow, byMatric map[string]models.Student) (*models.Student, models.MatchConfidence, error) {
	if student, ok := byMatric[row.MatricNo]; ok {
		return &student, models.MatchExact, nil
	}

	student, err := s.students.FindByNormalizedMatric(ctx, NormalizeMatric(row.MatricNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return student, models.MatchPartial, nil
}

// needsUpdate compares current and proposed classes after normalisation so a
// record already holding "2:1" is not re-flagged for "Second Class Upper".
func needsUpdate(current *string, proposed string) bool {
	if current == nil || *current == "" {
		return true
	}
	currentCanonical, ok := NormalizeClassOfDegree(*current)
	if !ok {
		return true
	}
	return currentCanonical != proposed
}

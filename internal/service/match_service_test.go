package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uniportal/degree-import-api/internal/models"
)

type studentFinderStub struct {
	students   map[string]models.Student
	normalized map[string]models.Student
}

func (s *studentFinderStub) FindByMatricNos(ctx context.Context, matricNos []string) ([]models.Student, error) {
	var out []models.Student
	for _, m := range matricNos {
		if st, ok := s.students[m]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *studentFinderStub) FindByNormalizedMatric(ctx context.Context, normalized string) (*models.Student, error) {
	if st, ok := s.normalized[normalized]; ok {
		return &st, nil
	}
	return nil, sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func TestMatchServiceExactMatch(t *testing.T) {
	finder := &studentFinderStub{
		students: map[string]models.Student{
			"ABC/12/0001": {ID: 1, MatricNo: "ABC/12/0001", FullName: "Ada", ClassOfDegree: strPtr("Second Class Lower")},
		},
	}
	svc := NewMatchService(finder, nil)

	records, summary, err := svc.Match(context.Background(), []models.ExtractedRow{
		{MatricNo: "ABC/12/0001", ClassOfDegree: "Second Class Upper", Source: models.SourceTable},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.MatchExact, records[0].MatchConfidence)
	require.True(t, records[0].NeedsUpdate)
	require.Equal(t, 1, summary.TotalExtracted)
	require.Equal(t, 1, summary.TotalMatched)
	require.Equal(t, 1, summary.ReadyForReview)
}

func TestMatchServicePartialMatchViaNormalization(t *testing.T) {
	finder := &studentFinderStub{
		students: map[string]models.Student{},
		normalized: map[string]models.Student{
			"ABC120001": {ID: 1, MatricNo: "abc-12-0001", FullName: "Ada", ClassOfDegree: nil},
		},
	}
	svc := NewMatchService(finder, nil)

	records, _, err := svc.Match(context.Background(), []models.ExtractedRow{
		{MatricNo: "ABC/12/0001", ClassOfDegree: "First Class", Source: models.SourceText},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.MatchPartial, records[0].MatchConfidence)
	require.Equal(t, "abc-12-0001", records[0].MatricNo)
	require.True(t, records[0].NeedsUpdate, "no current class means the record is actionable")
}

func TestMatchServiceUnmatchedRowsAreDropped(t *testing.T) {
	finder := &studentFinderStub{
		students: map[string]models.Student{
			"ABC/12/0001": {ID: 1, MatricNo: "ABC/12/0001", FullName: "Ada"},
		},
	}
	svc := NewMatchService(finder, nil)

	records, summary, err := svc.Match(context.Background(), []models.ExtractedRow{
		{MatricNo: "ABC/12/0001", ClassOfDegree: "First Class"},
		{MatricNo: "XYZ/99/9999", ClassOfDegree: "Pass"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 2, summary.TotalExtracted)
	require.Equal(t, 1, summary.TotalMatched)
}

func TestMatchServiceDeduplicatesByMatric(t *testing.T) {
	finder := &studentFinderStub{
		students: map[string]models.Student{
			"ABC/12/0001": {ID: 1, MatricNo: "ABC/12/0001", FullName: "Ada", ClassOfDegree: strPtr("Pass")},
		},
	}
	svc := NewMatchService(finder, nil)

	records, summary, err := svc.Match(context.Background(), []models.ExtractedRow{
		{MatricNo: "ABC/12/0001", ClassOfDegree: "First Class"},
		{MatricNo: "ABC/12/0001", ClassOfDegree: "Third Class"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "First Class", records[0].ProposedClassOfDegree, "first occurrence wins")
	require.Equal(t, 2, summary.TotalExtracted)
	require.Equal(t, 1, summary.TotalMatched)
}

func TestMatchServiceNoUpdateForEquivalentSpellings(t *testing.T) {
	finder := &studentFinderStub{
		students: map[string]models.Student{
			"ABC/12/0001": {ID: 1, MatricNo: "ABC/12/0001", FullName: "Ada", ClassOfDegree: strPtr("2:1")},
		},
	}
	svc := NewMatchService(finder, nil)

	records, _, err := svc.Match(context.Background(), []models.ExtractedRow{
		{MatricNo: "ABC/12/0001", ClassOfDegree: "Second Class Upper"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.False(t, records[0].NeedsUpdate, "2:1 already means Second Class Upper")
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/uniportal/degree-import-api/internal/models"
	appErrors "github.com/uniportal/degree-import-api/pkg/errors"
)

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByMatricNo(ctx context.Context, matricNo string) (*models.Student, error)
}

// StudentService exposes read access to the student register for the
// administrative screens.
type StudentService struct {
	repo   studentLister
	logger *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentLister, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	return students, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// GetByMatricNo returns a single student by matric number.
func (s *StudentService) GetByMatricNo(ctx context.Context, matricNo string) (*models.Student, error) {
	if matricNo == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "matric number is required")
	}
	student, err := s.repo.FindByMatricNo(ctx, matricNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uniportal/degree-import-api/internal/models"
)

// StudentRepository manages persistence for the student register.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "id, matric_no, full_name, department, class_of_degree, active, created_at, updated_at"

// FindByMatricNo fetches a single student by the exact matric number.
func (r *StudentRepository) FindByMatricNo(ctx context.Context, matricNo string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE matric_no = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, matricNo); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByMatricNos fetches all students whose matric number is in the provided set.
func (r *StudentRepository) FindByMatricNos(ctx context.Context, matricNos []string) ([]models.Student, error) {
	if len(matricNos) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(matricNos))
	args := make([]interface{}, len(matricNos))
	for i, m := range matricNos {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = m
	}
	query := fmt.Sprintf("SELECT %s FROM students WHERE matric_no IN (%s)",
		studentColumns, strings.Join(placeholders, ","))
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("find students by matric: %w", err)
	}
	return students, nil
}

// FindByNormalizedMatric matches a matric number ignoring case and separator
// characters, used for partial-confidence matching.
func (r *StudentRepository) FindByNormalizedMatric(ctx context.Context, normalized string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
WHERE REPLACE(REPLACE(UPPER(matric_no), '/', ''), '-', '') = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, normalized); err != nil {
		return nil, err
	}
	return &student, nil
}

// List returns students matching the provided filters together with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 3)

	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(matric_no) LIKE $%d)", len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"matric_no":  "matric_no",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, where, column, order, pageSize, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	return students, total, nil
}

// UpdateClassOfDegree persists a single class-of-degree correction.
func (r *StudentRepository) UpdateClassOfDegree(ctx context.Context, studentID int64, classOfDegree string) error {
	const query = `UPDATE students SET class_of_degree = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, classOfDegree, time.Now().UTC(), studentID)
	if err != nil {
		return fmt.Errorf("update class of degree: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check class of degree update rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("student %d not found", studentID)
	}
	return nil
}

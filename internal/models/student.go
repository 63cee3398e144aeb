package models

import "time"

// Student represents a graduate registered in the institution's register.
type Student struct {
	ID            int64     `db:"id" json:"id"`
	MatricNo      string    `db:"matric_no" json:"matric_no"`
	FullName      string    `db:"full_name" json:"full_name"`
	Department    string    `db:"department" json:"department"`
	ClassOfDegree *string   `db:"class_of_degree" json:"class_of_degree,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

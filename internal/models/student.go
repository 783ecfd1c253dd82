package models

import (
	"time"

	"github.com/lib/pq"
)

// Student represents a learner tracked by the behavior program.
type Student struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Stage        string         `db:"stage" json:"stage"`
	ClassName    string         `db:"class_name" json:"class"`
	TotalPoints  int            `db:"total_points" json:"total_points"`
	Achievements pq.StringArray `db:"achievements" json:"achievements"`
	DeletedAt    *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy    *string        `db:"deleted_by" json:"deleted_by,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Stage  string
	Class  string
	Search string
}

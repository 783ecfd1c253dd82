package models

import "time"

// BehaviorType represents the nature of a behavior event.
type BehaviorType string

const (
	BehaviorPositive BehaviorType = "positive"
	BehaviorNegative BehaviorType = "negative"
)

// BehaviorRecord is an immutable point-affecting event attributed to a student
// and the teacher who recorded it.
type BehaviorRecord struct {
	ID          string       `db:"id" json:"id"`
	StudentID   string       `db:"student_id" json:"student_id"`
	StudentName string       `db:"student_name" json:"student_name"`
	Type        BehaviorType `db:"behavior_type" json:"type"`
	Points      int          `db:"points" json:"points"`
	Description string       `db:"description" json:"description"`
	TeacherID   string       `db:"teacher_id" json:"teacher_id"`
	TeacherName string       `db:"teacher_name" json:"teacher_name"`
	CreatedAt   time.Time    `db:"created_at" json:"date"`
}

// BehaviorFilter allows paging through the ledger.
type BehaviorFilter struct {
	StudentID string
	Page      int
	PageSize  int
}

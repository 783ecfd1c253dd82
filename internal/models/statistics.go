package models

// TopStudent is a leaderboard row.
type TopStudent struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Stage     string `db:"stage" json:"stage"`
	ClassName string `db:"class_name" json:"class"`
	Points    int    `db:"total_points" json:"points"`
}

// BehaviorTypeCount aggregates ledger events by type.
type BehaviorTypeCount struct {
	Type  BehaviorType `db:"behavior_type"`
	Count int          `db:"count"`
}

// StudentSummary holds headcount and mean points of non-deleted students.
type StudentSummary struct {
	TotalStudents int     `db:"total_students"`
	AveragePoints float64 `db:"average_points"`
}

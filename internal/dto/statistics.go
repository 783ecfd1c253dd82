package dto

import (
	"time"

	"github.com/noah-isme/ruwad-api/internal/models"
)

// DashboardResponse is the aggregate statistics view.
type DashboardResponse struct {
	TotalStudents        int                 `json:"total_students"`
	TotalBehaviorRecords int                 `json:"total_behavior_records"`
	AveragePoints        float64             `json:"average_points"`
	TopStudents          []models.TopStudent `json:"top_students"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// BehaviorReport summarises the ledger, optionally for a single stage.
type BehaviorReport struct {
	Stage             string              `json:"stage,omitempty"`
	TotalStudents     int                 `json:"total_students"`
	PositiveBehaviors int                 `json:"positive_behaviors"`
	NegativeBehaviors int                 `json:"negative_behaviors"`
	AveragePoints     float64             `json:"average_points"`
	TopStudents       []models.TopStudent `json:"top_students"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

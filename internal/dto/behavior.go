package dto

import "github.com/noah-isme/ruwad-api/internal/models"

// RecordBehaviorRequest appends one event to the ledger.
type RecordBehaviorRequest struct {
	StudentID   string              `json:"student_id" validate:"required"`
	Type        models.BehaviorType `json:"type" validate:"required,oneof=positive negative"`
	Points      int                 `json:"points" validate:"min=-1000000,max=1000000"`
	Description string              `json:"description" validate:"max=1000"`
}

// BehaviorListQuery binds ledger paging parameters.
type BehaviorListQuery struct {
	StudentID string `form:"student_id"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// Actor identifies the authenticated user performing a write.
type Actor struct {
	ID   string
	Name string
	Role models.UserRole
}

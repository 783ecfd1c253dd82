package dto

// CreateStudentRequest is the payload for adding a single student.
type CreateStudentRequest struct {
	Name      string `json:"name" validate:"required,max=150"`
	Stage     string `json:"stage" validate:"required,max=50"`
	ClassName string `json:"class" validate:"required,max=50"`
}

// UpdateStudentRequest edits descriptive fields. Omitted fields are kept.
type UpdateStudentRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=150"`
	Stage     *string `json:"stage" validate:"omitempty,max=50"`
	ClassName *string `json:"class" validate:"omitempty,max=50"`
}

// ImportStudentsRequest carries a bulk import payload.
type ImportStudentsRequest struct {
	Stage     string   `json:"stage" validate:"required,max=50"`
	ClassName string   `json:"class" validate:"required,max=50"`
	Names     []string `json:"names" validate:"required"`
}

// ImportStudentsResult reports how many names became students.
type ImportStudentsResult struct {
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// RestoreStudentRequest names the tombstoned student to bring back.
type RestoreStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// StudentListQuery binds list filters from the query string.
type StudentListQuery struct {
	Stage  string `form:"stage"`
	Class  string `form:"class"`
	Search string `form:"search"`
}

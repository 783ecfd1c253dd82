package dto

// CreateTeacherRequest adds a teacher to the roster.
type CreateTeacherRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=100"`
	IsFake  bool   `json:"is_fake"`
}

package models

import "time"

// Teacher represents an instructor on the school roster.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	IsFake    bool      `db:"is_fake" json:"is_fake"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

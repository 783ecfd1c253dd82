package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateKey is returned when an insert violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrOutOfRange is returned when a numeric column would overflow.
	ErrOutOfRange = errors.New("value out of range")
)

const (
	pqUniqueViolation   = "23505"
	pqNumericOutOfRange = "22003"
)

func isUniqueViolation(err error) bool {
	return hasPQCode(err, pqUniqueViolation)
}

func isOutOfRange(err error) bool {
	return hasPQCode(err, pqNumericOutOfRange)
}

func hasPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

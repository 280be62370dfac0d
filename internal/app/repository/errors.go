package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrStaleVersion means the row changed since the caller read it.
	ErrStaleVersion = errors.New("row version is stale")
	// ErrInUse means other rows still reference the one being deleted.
	ErrInUse = errors.New("row is still referenced")
)

// IsDuplicateKey reports whether err is a unique constraint violation from
// Postgres (lib/pq) or the sqlite test database.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

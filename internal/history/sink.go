// Package history persists analysis records per caller handle.
package history

import (
	"context"
	"strings"

	"rolefit/internal/analysis"
	"rolefit/internal/errors"
)

// DefaultMaxEntries bounds how many records are kept per owner.
const DefaultMaxEntries = 50

// Sink stores and lists analysis records keyed by owner handle, newest
// first.
type Sink interface {
	Save(ctx context.Context, owner string, rec *analysis.Record) error
	List(ctx context.Context, owner string, limit int) ([]analysis.Record, error)
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

func validateOwner(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "history owner cannot be empty", nil)
	}
	return owner, nil
}

func validateRecord(rec *analysis.Record) error {
	if rec == nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "record cannot be nil", nil)
	}
	return nil
}

// clampLimit maps a requested limit onto 1..max; non-positive means max.
func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

// Package analysis assembles taxonomy lookup, normalization, matching,
// classification and advice into a single AnalysisRecord.
package analysis

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"rolefit/internal/advisory"
	apperrors "rolefit/internal/errors"
	"rolefit/internal/fitlevel"
	"rolefit/internal/matcher"
	"rolefit/internal/normalize"
	"rolefit/internal/taxonomy"
)

// ErrEmptyResumeText is returned when the résumé has no content once
// normalized.
var ErrEmptyResumeText = errors.New("empty resume text")

// Record is the result of one analysis. Treat it as read-only once returned.
type Record struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner,omitempty"`
	Branch    string          `json:"branch"`
	Role      string          `json:"role"`
	Match     matcher.Result  `json:"match"`
	Level     fitlevel.Level  `json:"level"`
	Advisory  advisory.Bundle `json:"advisory"`
	Strategy  string          `json:"strategy"`
	CreatedAt time.Time       `json:"createdAt"`
}

// WithOwner returns a copy of r attributed to owner.
func (r *Record) WithOwner(owner string) *Record {
	cp := *r
	cp.Owner = owner
	cp.Match.Matched = slices.Clone(r.Match.Matched)
	cp.Match.Missing = slices.Clone(r.Match.Missing)
	cp.Advisory.Roadmap = slices.Clone(r.Advisory.Roadmap)
	cp.Advisory.Tips = slices.Clone(r.Advisory.Tips)
	return &cp
}

// Engine runs analyses against the taxonomy its Source currently serves.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	source  taxonomy.Source
	matcher *matcher.Matcher
	now     func() time.Time
	newID   func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy selects the matching strategy.
func WithStrategy(s matcher.Strategy) Option {
	return func(e *Engine) { e.matcher = matcher.New(s) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an Engine reading from source.
func NewEngine(source taxonomy.Source, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		matcher: matcher.New(nil),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Taxonomy returns the taxonomy currently in effect.
func (e *Engine) Taxonomy() *taxonomy.Taxonomy {
	return e.source.Current()
}

// Strategy returns the name of the matching strategy.
func (e *Engine) Strategy() string {
	return e.matcher.Strategy().Name()
}

// Analyze scores text against the (branch, role) profile. It fails with
// taxonomy.ErrUnknownBranch, taxonomy.ErrUnknownRole or ErrEmptyResumeText;
// no partial record is returned on error.
func (e *Engine) Analyze(ctx context.Context, branch, role, text string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profile, err := e.source.Current().Profile(branch, role)
	if err != nil {
		return nil, err
	}

	normalized := normalize.Normalize(text)
	if normalized == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeEmptyResumeText,
			"resume text is empty after normalization", ErrEmptyResumeText).
			WithContext("branch", profile.Branch).
			WithContext("role", profile.Role)
	}

	res, err := e.matcher.Match(normalized, profile.Skills)
	if err != nil {
		return nil, err
	}

	level := fitlevel.Classify(res.Score)

	return &Record{
		ID:        e.newID(),
		Branch:    profile.Branch,
		Role:      profile.Role,
		Match:     res,
		Level:     level,
		Advisory:  advisory.AdviseWithTips(profile.Role, level, res.Score, res.Missing),
		Strategy:  e.matcher.Strategy().Name(),
		CreatedAt: e.now(),
	}, nil
}

// Package matcher partitions a role's required skills into those found in
// normalized résumé text and those missing, and scores the result.
package matcher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "rolefit/internal/errors"
	"rolefit/internal/taxonomy"
)

// Result is the outcome of matching one résumé against one role.
// Matched and Missing both keep taxonomy order and together hold every
// required skill exactly once.
type Result struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Score   int      `json:"score"`
}

// Strategy decides whether a skill token occurs in normalized text.
type Strategy interface {
	Name() string
	Contains(text, token string) bool
}

const (
	StrategySubstring    = "substring"
	StrategyWordBoundary = "word"
)

// Substring matches a token anywhere in the text, so "sql" is found inside
// "mysql".
type Substring struct{}

func (Substring) Name() string { return StrategySubstring }

func (Substring) Contains(text, token string) bool {
	return token != "" && strings.Contains(text, token)
}

// WordBoundary matches a token only when it is not flanked by a letter or
// digit, so "sql" is not found inside "mysql" but "git" is found in "git.".
type WordBoundary struct{}

func (WordBoundary) Name() string { return StrategyWordBoundary }

func (WordBoundary) Contains(text, token string) bool {
	if token == "" {
		return false
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], token)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(token)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ParseStrategy maps a configuration value onto a Strategy. An empty name
// selects Substring.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategySubstring:
		return Substring{}, nil
	case StrategyWordBoundary, "word-boundary", "wordboundary":
		return WordBoundary{}, nil
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown match strategy %q (must be %q or %q)", name, StrategySubstring, StrategyWordBoundary), nil)
	}
}

// Matcher applies a Strategy to a required-skill list.
type Matcher struct {
	strategy Strategy
}

// New returns a Matcher using s; a nil s means Substring.
func New(s Strategy) *Matcher {
	if s == nil {
		s = Substring{}
	}
	return &Matcher{strategy: s}
}

// Strategy reports the strategy in use.
func (m *Matcher) Strategy() Strategy { return m.strategy }

// Match tests each required skill against already-normalized text, in order.
// An empty skill list is a taxonomy defect and fails with
// taxonomy.ErrInvalidEntry.
func (m *Matcher) Match(normalized string, skills []string) (Result, error) {
	if len(skills) == 0 {
		return Result{}, apperrors.NewConfigError(apperrors.ErrCodeInvalidTaxonomyEntry,
			"required skill list is empty", taxonomy.ErrInvalidEntry)
	}

	res := Result{
		Matched: make([]string, 0, len(skills)),
		Missing: make([]string, 0, len(skills)),
	}
	for _, skill := range skills {
		if m.strategy.Contains(normalized, strings.ToLower(skill)) {
			res.Matched = append(res.Matched, skill)
		} else {
			res.Missing = append(res.Missing, skill)
		}
	}
	res.Score = Score(len(res.Matched), len(skills))
	return res, nil
}

// Score returns 100*matched/required rounded half up, clamped to 0..100.
// required must be positive.
func Score(matched, required int) int {
	if required <= 0 {
		return 0
	}
	matched = max(0, min(matched, required))
	return (200*matched + required) / (2 * required)
}

// Package fitlevel buckets a 0..100 fit score into a qualitative level.
package fitlevel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is a qualitative fit bucket.
type Level int

const (
	Poor Level = iota
	Medium
	Strong
)

// Inclusive lower bounds.
const (
	StrongThreshold = 75
	MediumThreshold = 50
)

// Classify maps a score onto a Level. It is total: scores outside 0..100
// fall into the nearest bucket.
func Classify(score int) Level {
	switch {
	case score >= StrongThreshold:
		return Strong
	case score >= MediumThreshold:
		return Medium
	default:
		return Poor
	}
}

func (l Level) String() string {
	switch l {
	case Strong:
		return "Strong"
	case Medium:
		return "Medium"
	case Poor:
		return "Poor"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Parse is the inverse of String, case-insensitive.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strong":
		return Strong, nil
	case "medium":
		return Medium, nil
	case "poor":
		return Poor, nil
	default:
		return Poor, fmt.Errorf("unknown fit level %q", s)
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

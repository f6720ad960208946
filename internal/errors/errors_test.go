package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", NewValidationError(ErrCodeInvalidRequest, "bad input", nil), "INVALID_REQUEST: bad input"},
		{"with cause", NewStorageError(ErrCodeStorageFailed, "save failed", cause), "STORAGE_FAILED: save failed (caused by: boom)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrapAndAs(t *testing.T) {
	sentinel := stderrors.New("unknown role")
	appErr := NewNotFoundError(ErrCodeUnknownRole, "role not found", sentinel)
	wrapped := fmt.Errorf("analyze: %w", appErr)

	assert.ErrorIs(t, wrapped, sentinel)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeUnknownRole, got.Code)
	assert.Equal(t, ErrorTypeNotFound, got.Type)

	_, ok = As(sentinel)
	assert.False(t, ok)
}

func TestWithContext(t *testing.T) {
	err := NewNotFoundError(ErrCodeUnknownBranch, "branch not found", nil).
		WithContext("branch", "Physics")

	assert.Equal(t, "Physics", err.Context["branch"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogErrorExpandsAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	err := NewNotFoundError(ErrCodeUnknownRole, "role not found", nil).WithContext("role", "Pilot")
	logger.LogError(fmt.Errorf("wrapped: %w", err), "analysis failed", "request_id", "r-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysis failed", entry["msg"])
	assert.Equal(t, ErrCodeUnknownRole, entry["error_code"])
	assert.Equal(t, "not_found", entry["error_type"])
	assert.Equal(t, "Pilot", entry["role"])
	assert.Equal(t, "r-1", entry["request_id"])
}

func TestLogErrorPlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo)

	logger.LogError(stderrors.New("disk full"), "write failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "disk full", entry["error"])
}

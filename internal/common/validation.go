package common

import (
	"fmt"
	"slices"

	"rolefit/internal/config"
	"rolefit/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil)
}

// ResolveOutputFormat applies the configured default to an empty format and
// validates the result.
func ResolveOutputFormat(format string, app config.AppConfig) (string, error) {
	if format == "" {
		format = app.DefaultFormat
	}
	if err := ValidateOutputFormat(format, app.SupportedFormats); err != nil {
		return "", err
	}
	return format, nil
}

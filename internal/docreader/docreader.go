// Package docreader extracts plain résumé text from uploaded or on-disk
// documents.
package docreader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"

	"rolefit/internal/errors"
)

// DefaultMaxSize caps documents at 10MB.
const DefaultMaxSize int64 = 10 * 1024 * 1024

var (
	textExtensions = []string{".txt", ".text", ".md", ".markdown"}
	pdfExtensions  = []string{".pdf"}
)

// Reader reads résumé documents into plain text.
type Reader struct {
	maxSize int64
	logger  *errors.Logger
}

// New creates a Reader. A non-positive maxSize selects DefaultMaxSize.
func New(maxSize int64, logger *errors.Logger) *Reader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if logger == nil {
		logger = errors.Nop()
	}
	return &Reader{maxSize: maxSize, logger: logger}
}

// SupportedExtensions lists the accepted file extensions.
func SupportedExtensions() []string {
	return slices.Concat(textExtensions, pdfExtensions)
}

// IsSupported reports whether name has an accepted extension.
func IsSupported(name string) bool {
	return slices.Contains(SupportedExtensions(), Extension(name))
}

// Extension returns the lowercased extension of name.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Read loads path and returns its text.
func (r *Reader) Read(path string) (string, error) {
	if path == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "file name cannot be empty", nil)
	}
	if !IsSupported(path) {
		return "", unsupported(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Path is a directory, not a file: %s", path), nil)
	}
	if info.Size() > r.maxSize {
		return "", tooLarge(path, info.Size(), r.maxSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			r.logger.Warn("Failed to close file", "filename", path, "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(file, r.maxSize+1))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", path), err)
	}

	return r.ReadBytes(filepath.Base(path), data)
}

// ReadBytes decodes an in-memory document. name is used only to pick the
// decoder by extension.
func (r *Reader) ReadBytes(name string, data []byte) (string, error) {
	if int64(len(data)) > r.maxSize {
		return "", tooLarge(name, int64(len(data)), r.maxSize)
	}

	ext := Extension(name)
	switch {
	case slices.Contains(textExtensions, ext):
		return string(data), nil
	case slices.Contains(pdfExtensions, ext):
		text, err := extractPDF(data)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("Failed to extract text from PDF: %s", name), err)
		}
		r.logger.Debug("Extracted PDF text", "filename", name, "chars", len(text))
		return text, nil
	default:
		return "", unsupported(name)
	}
}

// extractPDF concatenates the plain text of every page. The pdf package
// panics on many malformed inputs; those are returned as errors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= rd.NumPage(); i++ {
		page := rd.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func unsupported(name string) error {
	return errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
		fmt.Sprintf("Unsupported file type %q (supported: %s)", Extension(name), strings.Join(SupportedExtensions(), ", ")), nil).
		WithContext("filename", name)
}

func tooLarge(name string, size, limit int64) error {
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("File %s is %s, limit is %s", name, FormatSize(size), FormatSize(limit)), nil)
}

// FormatSize returns a human-readable byte size.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

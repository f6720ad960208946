package taxonomy

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "rolefit/internal/errors"
)

// Parse decodes a YAML taxonomy document and validates it.
func Parse(data []byte) (*Taxonomy, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidFormat, "failed to parse taxonomy YAML", err)
	}
	return New(def)
}

// LoadFile reads and validates a YAML taxonomy file.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewIOError(apperrors.ErrCodeFileNotFound, "taxonomy file not found", err).
				WithContext("path", path)
		}
		return nil, apperrors.NewIOError(apperrors.ErrCodeFileNotReadable, "failed to read taxonomy file", err).
			WithContext("path", path)
	}

	t, err := Parse(data)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// Marshal renders a taxonomy as YAML in the format Parse accepts.
func Marshal(t *Taxonomy) ([]byte, error) {
	return yaml.Marshal(t.Definition())
}

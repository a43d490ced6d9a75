package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrArtifactNotFound is returned when the artifact file does not exist.
var ErrArtifactNotFound = errors.New("model artifact not found")

// Format identifies an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the artifact encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported artifact extension %q", filepath.Ext(path))
	}
}

// LoadFile reads, decodes and validates the artifact at path and builds a
// ready classifier.
func LoadFile(path string) (*Pipeline, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	return Load(bytes.NewReader(data), format)
}

// Load decodes and validates an artifact from r. Unknown keys are rejected so
// that a mislabeled export fails at start-up rather than on the first request.
func Load(r io.Reader, format Format) (*Pipeline, error) {
	var a Artifact

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode JSON artifact: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode YAML artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", format)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	return NewPipeline(&a), nil
}

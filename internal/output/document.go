// =============================================================================
// VAR Sheet Mapper - Output Documents
// =============================================================================
//
// This package renders a mapped VAR sheet into the files handed to the
// provisioning system:
//   - JSON: the canonical field map, checked against a JSON schema
//   - XML:  the same fields as elements, one per canonical key
//   - XLSX: a batch report with one row per processed sheet
//
// Every format emits the canonical keys in canonical order.
//
// =============================================================================

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/validation"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Dialect sources recorded on a Document.
const (
	DialectSourceFlag     = "flag"
	DialectSourceDetected = "detected"
	DialectSourceFallback = "fallback"
)

// Document is one mapped sheet ready to be rendered.
type Document struct {
	// Source is the input file name.
	Source string

	// Dialect is the dialect the sheet was parsed with.
	Dialect types.Dialect

	// DialectSource tells whether the dialect came from a flag, detection or
	// the configured fallback.
	DialectSource string

	// GeneratedAt is the render time. Zero means time.Now().
	GeneratedAt time.Time

	// Fields is the canonical field map.
	Fields types.FieldMap

	// Validation is the validator verdict. Optional.
	Validation *validation.Result
}

func (d *Document) generatedAt() time.Time {
	if d.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return d.GeneratedAt.UTC()
}

// orderedFields marshals a FieldMap with keys in canonical order.
type orderedFields types.FieldMap

func (f orderedFields) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for i, entry := range types.FieldMap(f).Entries() {
		if i > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// Render renders doc in the named format.
func Render(doc *Document, format string) ([]byte, error) {
	if doc == nil {
		return nil, apperrors.NewInvalidArgumentError("document is nil")
	}
	switch format {
	case FormatJSON:
		return GenerateJSON(doc)
	case FormatXML:
		return GenerateXML(doc)
	default:
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("unsupported output format %q", format))
	}
}

// WriteFile writes data to path, creating the parent directory.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	return nil
}

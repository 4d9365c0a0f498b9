package utils

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// =============================================================================
// COMPRESSED INPUT
// =============================================================================

// Compression identifies how an input file is compressed.
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
	CompressionXZ    Compression = "xz"
	CompressionZstd  Compression = "zstd"
	CompressionLZ4   Compression = "lz4"
)

var compressionExtensions = map[string]Compression{
	".gz":   CompressionGzip,
	".bz2":  CompressionBzip2,
	".xz":   CompressionXZ,
	".zst":  CompressionZstd,
	".zstd": CompressionZstd,
	".lz4":  CompressionLZ4,
}

// DetectCompression returns the compression implied by the file extension.
func DetectCompression(path string) Compression {
	return compressionExtensions[strings.ToLower(filepath.Ext(path))]
}

// StripCompressionExt removes a trailing compression extension, so
// "sheet.txt.gz" becomes "sheet.txt".
func StripCompressionExt(path string) string {
	if DetectCompression(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// BaseName returns the file name without directory, compression extension
// and content extension: "in/acme.txt.gz" becomes "acme".
func BaseName(path string) string {
	name := filepath.Base(StripCompressionExt(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// NewDecompressedReader wraps reader according to compression. The returned
// close function may be nil.
func NewDecompressedReader(reader io.Reader, compression Compression) (io.Reader, func() error, error) {
	switch compression {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, func() error { return gzReader.Close() }, nil

	case CompressionBzip2:
		return bzip2.NewReader(reader), nil, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, nil, nil

	case CompressionZstd:
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error { decoder.Close(); return nil }, nil

	case CompressionLZ4:
		return lz4.NewReader(reader), nil, nil

	default:
		return reader, nil, nil
	}
}

// DefaultMaxTextBytes caps the decompressed size of one text extract.
const DefaultMaxTextBytes int64 = 8 << 20

// ErrInputTooLarge is returned when an extract decompresses past its cap.
var ErrInputTooLarge = errors.New("input exceeds size limit")

// ReadText reads a text extract, decompressing it when the extension says
// so. The decompressed text is capped at DefaultMaxTextBytes.
func ReadText(path string) (string, error) {
	return ReadTextLimit(path, DefaultMaxTextBytes)
}

// ReadTextLimit is ReadText with an explicit cap on the decompressed size.
//
// PARAMETERS:
//   - path: The extract, optionally compressed.
//   - limit: The maximum number of decompressed bytes. Zero or less selects
//     DefaultMaxTextBytes.
//
// RETURNS:
//   - The text, or an error wrapping ErrInputTooLarge when the cap is hit.
func ReadTextLimit(path string, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxTextBytes
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader, closeFn, err := NewDecompressedReader(file, DetectCompression(path))
	if err != nil {
		return "", err
	}
	if closeFn != nil {
		defer closeFn()
	}

	// One byte past the cap tells a full read from a truncated one.
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%s: %w (%d bytes)", path, ErrInputTooLarge, limit)
	}
	return string(data), nil
}

package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	t.Parallel()

	fm := newTestFileManager(t)
	touch(t, filepath.Join(fm.InputDir, "b.txt"), "b")
	touch(t, filepath.Join(fm.InputDir, "a.txt.gz"), "a")
	touch(t, filepath.Join(fm.InputDir, "notes.md"), "n")
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.txt"), 0755))

	files, err := fm.DiscoverInputFiles("*.txt", "*.txt.gz", "b.*")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.txt.gz"),
		filepath.Join(fm.InputDir, "b.txt"),
	}, files)

	files, err = fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(fm.InputDir, "b.txt")}, files)

	_, err = fm.DiscoverInputFiles("[")
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	t.Parallel()

	fm := newTestFileManager(t)
	src := filepath.Join(fm.InputDir, "sheet.txt")
	touch(t, src, "data")

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "sheet.txt"), archived)
	assert.False(t, FileExists(src))
	assert.True(t, FileExists(archived))
}

func TestArchiveOutputFileKeepsOriginal(t *testing.T) {
	t.Parallel()

	fm := newTestFileManager(t)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }

	out := filepath.Join(fm.OutputDir, "sheet_TSYS.json")
	touch(t, out, "{}")

	archived, err := fm.ArchiveOutputFile(out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.OutputArchiveDir, "2024", "01", "15", "sheet_TSYS.json"), archived)
	assert.True(t, FileExists(out))

	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestArchiveDisabled(t *testing.T) {
	t.Parallel()

	fm := newTestFileManager(t)
	fm.ArchiveOnSuccess = false
	src := filepath.Join(fm.InputDir, "sheet.txt")
	touch(t, src, "data")

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, archived)
	assert.True(t, FileExists(src))
}

func TestGenerateOutputFileName(t *testing.T) {
	t.Parallel()

	name := GenerateOutputFileName("{name}_{dialect}", "json", map[string]string{
		"name":    "acme",
		"dialect": "TSYS",
	})
	assert.Equal(t, "acme_TSYS.json", name)

	name = GenerateOutputFileName("{name}.xml", ".xml", map[string]string{"name": "a/b"})
	assert.Equal(t, "a_b.xml", name)

	name = GenerateOutputFileName("{name}_{date}", "", map[string]string{"name": "acme"})
	assert.Equal(t, "acme_"+time.Now().Format("20060102"), name)

	name = GenerateOutputFileName("{uuid}", ".json", nil)
	assert.Len(t, strings.TrimSuffix(name, ".json"), 36)
}

func TestWriteErrorLog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "acme.txt",
		Dialect:      "TSYS",
		ErrorType:    "VALIDATION_ERROR",
		ErrorMessage: "TSYS_Merchant_ID is required for TSYS",
		FieldName:    "TSYS_Merchant_ID",
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Total Errors: 1")
	assert.Contains(t, content, "Error #1")
	assert.Contains(t, content, "TSYS_Merchant_ID is required for TSYS")
	assert.Contains(t, content, "Dialect:        TSYS")
	assert.NotContains(t, content, "Value:")
}

func TestWriteSummaryLog(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		DialectCounts:   map[string]int{"TSYS": 1, "Heartland": 1},
		ProcessedFiles: []ProcessedFileInfo{{
			InputFile:     "acme.txt",
			OutputFiles:   []string{"acme_TSYS.json", "acme_TSYS.xml"},
			Dialect:       "TSYS",
			DialectSource: "detected",
		}},
		FailedFilesList: []FailedFileInfo{{InputFile: "bad.txt", ErrorMessage: "boom"}},
	}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Duration:       2s")
	assert.Contains(t, content, "acme_TSYS.json, acme_TSYS.xml")
	assert.Contains(t, content, "TSYS (detected)")
	assert.Contains(t, content, "Error: boom")
	assert.Less(t, strings.Index(content, "Heartland:"), strings.Index(content, "TSYS:"))
}

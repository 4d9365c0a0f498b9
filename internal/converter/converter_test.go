package converter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/logger"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/output"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/pkg/utils"
)

const cleanSheet = `TSYS Merchant Profile
| Merchant ID: | 123456789012 |
| DBA Name: | CORNER DELI |
| Zip Code: | 64105 |
| Terminal ID: | V87654321 |
| Terminal Number: | 0001 |
`

const incompleteSheet = `TSYS Merchant Profile
| DBA Name: | CORNER DELI |
`

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	return &config.MainConfig{
		InputDir:         filepath.Join(root, "input"),
		OutputDir:        filepath.Join(root, "output"),
		InputArchiveDir:  filepath.Join(root, "input_archive"),
		OutputArchiveDir: filepath.Join(root, "output_archive"),
		OutputNameFormat: "{name}_{dialect}",
		OutputFormats:    []string{config.OutputFormatJSON, config.OutputFormatXML},
		DefaultOverrides: map[string]string{},
		FallbackDialect:  "TSYS",
		ContinueOnError:  true,
		ArchiveInputs:    true,
	}
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, text string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0755))
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func newPipeline(t *testing.T, cfg *config.MainConfig) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, nil, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return p
}

func TestRunCleanSheet(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	input := writeInput(t, cfg, "deli.txt", cleanSheet)

	result := New(input, newPipeline(t, cfg), Options{}).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, types.DialectTSYS, result.Dialect)
	assert.Equal(t, output.DialectSourceDetected, result.DialectSource)
	assert.Zero(t, result.Stats.ValidationErrors)
	assert.Positive(t, result.Stats.FieldsExtracted)
	assert.Positive(t, result.Stats.FieldsMapped)

	require.Len(t, result.OutputFiles, 2)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "deli_TSYS.json"), result.OutputFiles[0])
	assert.Equal(t, filepath.Join(cfg.OutputDir, "deli_TSYS.xml"), result.OutputFiles[1])

	data, err := os.ReadFile(result.OutputFiles[0])
	require.NoError(t, err)
	var doc struct {
		Dialect string            `json:"dialect"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "TSYS", doc.Dialect)
	assert.Equal(t, "787654321", doc.Fields[types.FieldTSYSTerminalID])
	assert.Equal(t, "123456789012", doc.Fields[types.FieldTSYSMerchantID])

	assert.Equal(t, filepath.Join(cfg.InputArchiveDir, "deli.txt"), result.ArchivePath)
	assert.NoFileExists(t, input)
	assert.FileExists(t, result.ArchivePath)
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, "deli_TSYS.json"))
}

func TestRunValidationErrorsKeepInput(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	input := writeInput(t, cfg, "partial.txt", incompleteSheet)

	result := New(input, newPipeline(t, cfg), Options{}).Run()
	assert.False(t, result.Success)
	assert.True(t, apperrors.HasCode(result.Error, apperrors.ErrCodeValidationFailed))
	assert.Equal(t, 3, result.Stats.ValidationErrors)

	// Outputs are still written for review; the input stays put.
	assert.Len(t, result.OutputFiles, 2)
	assert.Empty(t, result.ArchivePath)
	assert.FileExists(t, input)
	require.NotNil(t, result.Document)
	assert.False(t, result.Document.Validation.IsValid)
}

func TestRunDialectResolution(t *testing.T) {
	t.Parallel()

	t.Run("flag wins over detection", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		input := writeInput(t, cfg, "deli.txt", cleanSheet)

		result := New(input, newPipeline(t, cfg), Options{Dialect: types.DialectUR, DryRun: true}).Run()
		assert.Equal(t, types.DialectUR, result.Dialect)
		assert.Equal(t, output.DialectSourceFlag, result.DialectSource)
	})

	t.Run("fallback when no anchors", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		input := writeInput(t, cfg, "plain.txt", "| Merchant ID: | 123456789012 |\n")

		result := New(input, newPipeline(t, cfg), Options{DryRun: true}).Run()
		assert.Equal(t, types.DialectTSYS, result.Dialect)
		assert.Equal(t, output.DialectSourceFallback, result.DialectSource)
	})

	t.Run("unknown fallback uses generic parser", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.FallbackDialect = "Unknown"
		input := writeInput(t, cfg, "plain.txt", "| Merchant ID: | 123456789012 |\n")

		result := New(input, newPipeline(t, cfg), Options{DryRun: true}).Run()
		require.NoError(t, result.Error)
		assert.Equal(t, types.DialectUnknown, result.Dialect)
		assert.Zero(t, result.Stats.FieldsExtracted)
	})
}

func TestRunDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	input := writeInput(t, cfg, "deli.txt", cleanSheet)

	result := New(input, newPipeline(t, cfg), Options{DryRun: true}).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFiles)
	assert.FileExists(t, input)
	assert.NoDirExists(t, cfg.OutputDir)
	require.NotNil(t, result.Document)
	assert.Equal(t, "deli.txt", result.Document.Source)
}

func TestRunOverrideLayers(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.DefaultOverrides = map[string]string{
		types.FieldMerchantName:         "FROM CONFIG",
		types.FieldContactlessSignature: "Y",
	}
	input := writeInput(t, cfg, "deli.txt", cleanSheet)

	result := New(input, newPipeline(t, cfg), Options{
		DryRun:    true,
		Overrides: map[string]string{types.FieldMerchantName: "FROM FLAG"},
	}).Run()
	require.NoError(t, result.Error)

	fields := result.Document.Fields
	assert.Equal(t, "FROM FLAG", fields[types.FieldMerchantName])
	assert.Equal(t, "Y", fields[types.FieldContactlessSignature])
}

func TestRunMissingInput(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	result := New(filepath.Join(cfg.InputDir, "missing.txt"), newPipeline(t, cfg), Options{}).Run()
	assert.False(t, result.Success)
	assert.True(t, apperrors.HasCode(result.Error, apperrors.ErrCodeFileReadFailed))
	assert.Nil(t, result.Document)
	assert.Empty(t, result.Dialect)
}

func TestRunInputTooLarge(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.MaxInputBytes = 32
	input := writeInput(t, cfg, "deli.txt", cleanSheet)

	result := New(input, newPipeline(t, cfg), Options{}).Run()
	assert.False(t, result.Success)
	assert.True(t, apperrors.HasCode(result.Error, apperrors.ErrCodeFileReadFailed))
	assert.ErrorIs(t, result.Error, utils.ErrInputTooLarge)
	assert.Nil(t, result.Document)
	assert.FileExists(t, input)
}

func TestRunKeepsParsedRecord(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	input := writeInput(t, cfg, "deli.txt", cleanSheet)
	pipeline := newPipeline(t, cfg)

	result := New(input, pipeline, Options{DryRun: true}).Run()
	require.NoError(t, result.Error)
	require.NotNil(t, result.Record)
	assert.Equal(t, types.DialectTSYS, result.Record.Format)
	assert.Equal(t, "123456789012", result.Record.Merchant[types.MerchantID])
	assert.Equal(t, "V87654321", result.Record.Terminal[types.TerminalID])

	// Editing the returned record leaves the mapped document alone.
	result.Record.Merchant[types.MerchantID] = "000000000000"
	delete(result.Record.Terminal, types.TerminalID)
	assert.Equal(t, "123456789012", result.Document.Fields[types.FieldTSYSMerchantID])

	again := New(input, pipeline, Options{DryRun: true}).Run()
	require.NoError(t, again.Error)
	assert.Equal(t, "123456789012", again.Record.Merchant[types.MerchantID])
	assert.NotSame(t, result.Record, again.Record)
}

func TestRunArchiveDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.ArchiveInputs = false
	input := writeInput(t, cfg, "deli.txt", cleanSheet)

	result := New(input, newPipeline(t, cfg), Options{}).Run()
	require.NoError(t, result.Error)
	assert.Empty(t, result.ArchivePath)
	assert.FileExists(t, input)
	assert.NoDirExists(t, cfg.OutputArchiveDir)
}

func TestNewPipelineRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(nil, nil, nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))

	profiles := config.DefaultProfiles()
	profiles[types.DialectHeartland].NameRejections = []string{"("}
	_, err = NewPipeline(testConfig(t), profiles, nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandOptions(t *testing.T) {
	opts, err := commandOptions("heartland", []string{"merchant_name=CORNER DELI"})
	require.NoError(t, err)
	assert.Equal(t, types.DialectHeartland, opts.Dialect)
	assert.Equal(t, map[string]string{types.FieldMerchantName: "CORNER DELI"}, opts.Overrides)
	assert.False(t, opts.DryRun)

	opts, err = commandOptions("", nil)
	require.NoError(t, err)
	assert.Empty(t, opts.Dialect)

	_, err = commandOptions("Vantiv", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDialect))

	_, err = commandOptions("", []string{"Nickname=deli"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema", "--format", "xml")
	require.NoError(t, err)
	assert.Contains(t, out, "<xs:schema")

	out, err = execute(t, "schema", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema"`)

	_, err = execute(t, "schema", "--format", "yaml")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestDetectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte("HEARTLAND PAYMENT SYSTEMS\nMID: 000111222\n"), 0644))

	out, err := execute(t, "detect", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Dialect: Heartland")
	assert.Contains(t, out, "Anchors:")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "VAR Sheet Mapper")
	assert.Contains(t, out, "Dialects:   Propelr, Heartland, UR, TSYS")
}

// writeConfig writes a config that keeps every directory under a temp root.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	content := "input_dir: " + filepath.Join(root, "input") + "\n" +
		"output_dir: " + filepath.Join(root, "output") + "\n" +
		"input_archive_dir: " + filepath.Join(root, "input_archive") + "\n" +
		"output_archive_dir: " + filepath.Join(root, "output_archive") + "\n" +
		"profiles_dir: " + filepath.Join(root, "profiles") + "\n" +
		"log_dir: " + filepath.Join(root, "logs") + "\n"
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, root
}

func TestParseCommandRecord(t *testing.T) {
	t.Cleanup(func() {
		parseRecord = false
		cfgFile = ""
	})

	cfgPath, root := writeConfig(t)
	sheet := filepath.Join(root, "deli.txt")
	require.NoError(t, os.WriteFile(sheet, []byte("TSYS Merchant Profile\n| Merchant ID: | 123456789012 |\n| Terminal ID: | V87654321 |\n"), 0644))

	out, err := execute(t, "parse", "--config", cfgPath, "--file", sheet, "--record")
	require.NoError(t, err)
	assert.Contains(t, out, `"format": "TSYS"`)
	assert.Contains(t, out, `"merchantId": "123456789012"`)

	assert.DirExists(t, filepath.Join(root, "input_archive"))
	assert.DirExists(t, filepath.Join(root, "output_archive"))
	assert.FileExists(t, sheet)
}

func TestParseCommandMissingFile(t *testing.T) {
	_, err := execute(t, "parse", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileReadFailed))
}

package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

func writeText(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := writeText(t, "overrides.csv", utf8BOM+"File,TSYS_Terminal_Number,Notes\n"+
		"acme.txt,0002,call first\n"+
		",,\n"+
		"\"harbor\",\"0003\"\n")

	wb, err := LoadCSV(path, ",")
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, wb.IgnoredColumns)
	assert.Equal(t, []string{"acme", "harbor"}, wb.Files())
	assert.Equal(t, map[string]string{types.FieldTSYSTerminalNumber: "0002"}, wb.For("acme.txt"))
	assert.Equal(t, map[string]string{types.FieldTSYSTerminalNumber: "0003"}, wb.For("harbor.txt"))
}

func TestLoadCSVDelimiters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delimiter string
		content   string
	}{
		{"tab", "file\tMerchant_Name\nacme\tCORNER DELI\n"},
		{"pipe", "file|Merchant_Name\nacme|CORNER DELI\n"},
		{";", "file;Merchant_Name\nacme;CORNER DELI\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.delimiter, func(t *testing.T) {
			t.Parallel()
			wb, err := LoadCSV(writeText(t, "overrides.txt", tt.content), tt.delimiter)
			require.NoError(t, err)
			assert.Equal(t, "CORNER DELI", wb.For("acme")[types.FieldMerchantName])
		})
	}
}

func TestLoadDispatchesByExtension(t *testing.T) {
	t.Parallel()

	wb, err := Load(writeText(t, "overrides.tsv", "file\tMerchant_Zip\nacme\t64105\n"))
	require.NoError(t, err)
	assert.Equal(t, "64105", wb.For("acme")[types.FieldMerchantZip])

	wb, err = Load(writeWorkbook(t, [][]interface{}{{"File", "Merchant_Zip"}, {"acme", "64105"}}))
	require.NoError(t, err)
	assert.Equal(t, "64105", wb.For("acme")[types.FieldMerchantZip])
}

func TestLoadCSVErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), ",")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileReadFailed))

	_, err = LoadCSV(writeText(t, "overrides.csv", "Merchant_Name\nX\n"), ",")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))

	wb, err := LoadCSV(writeText(t, "empty.csv", ""), ",")
	require.NoError(t, err)
	assert.Empty(t, wb.Rows)
}

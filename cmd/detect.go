// =============================================================================
// VAR Sheet Mapper - Detect Command
// =============================================================================
//
// COMMAND USAGE:
//   varsheet detect --file sheet.txt
//
// OUTPUT:
//   File:    sheet.txt
//   Dialect: Heartland
//   Anchors: (?i)\bheartland, (?i)\bcurbstone\s+card
//
// A sheet without anchors prints "Unknown" and the configured fallback.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/varparser"
	"github.com/ginjaninja78/VAR-sheet-mapper/pkg/utils"
)

// detectFile is the sheet to inspect.
var detectFile string

// detectCmd represents the 'detect' command.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the dialect detected for a sheet",
	Long: `The detect command reads one extracted VAR sheet and prints the dialect
that auto-detection selects, together with the anchor phrases of that dialect.
Nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetect(cmd)
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectFile, "file", "", "Path to the extracted sheet (required)")
	_ = detectCmd.MarkFlagRequired("file")
}

func runDetect(cmd *cobra.Command) error {
	text, err := utils.ReadText(detectFile)
	if err != nil {
		return apperrors.NewFileReadError(detectFile, err)
	}

	out := cmd.OutOrStdout()
	d := varparser.Detect(text)

	fmt.Fprintf(out, "File:    %s\n", filepath.Base(detectFile))
	fmt.Fprintf(out, "Dialect: %s\n", d)

	if d == types.DialectUnknown {
		// The config is only needed to report the fallback.
		fallback := types.DialectTSYS
		if cfg, err := config.Load(cfgFile); err == nil {
			fallback = cfg.Fallback()
		}
		fmt.Fprintf(out, "Fallback: %s\n", fallback)
		return nil
	}

	fmt.Fprintf(out, "Anchors: %s\n", strings.Join(varparser.Anchors(d), ", "))
	return nil
}

// =============================================================================
// VAR Sheet Mapper - Parse Command
// =============================================================================
//
// This file defines the 'parse' command, which maps a single sheet and prints
// the result instead of writing output files.
//
// COMMAND USAGE:
//   varsheet parse --file sheet.txt [flags]
//
// FLAGS:
//   --file     : Path to the extracted sheet (required)
//   --dialect  : Force a dialect instead of detecting it
//   --set      : Override a canonical field, KEY=VALUE (repeatable)
//   --output   : Output format, json or xml (default json)
//   --record   : Print the parsed record as JSON instead of the mapped fields
//
// The mapped document goes to stdout and validation issues to stderr. The
// command fails when the sheet has validation errors.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/converter"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/output"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/overrides"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	parseFile    string
	parseDialect string
	parseSet     []string
	parseOutput  string
	parseRecord  bool
)

// parseCmd represents the 'parse' command.
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Map one sheet and print the canonical fields",
	Long: `The parse command runs one extracted VAR sheet through detection, parsing,
mapping and validation, and prints the mapped document. Nothing is written to
the output directory and the input is not archived.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseFile, "file", "", "Path to the extracted sheet (required)")
	parseCmd.Flags().StringVar(&parseDialect, "dialect", "", "Force a dialect: TSYS, Propelr, Heartland, UR or Unknown")
	parseCmd.Flags().StringArrayVar(&parseSet, "set", nil, "Override a canonical field, KEY=VALUE (repeatable)")
	parseCmd.Flags().StringVar(&parseOutput, "output", output.FormatJSON, "Output format: json or xml")
	parseCmd.Flags().BoolVar(&parseRecord, "record", false, "Print the parsed record before mapping, as JSON")
	_ = parseCmd.MarkFlagRequired("file")
}

// =============================================================================
// MAIN FUNCTION
// =============================================================================

func runParse(cmd *cobra.Command) error {
	opts, err := commandOptions(parseDialect, parseSet)
	if err != nil {
		return err
	}
	opts.DryRun = true

	if err := requireInput(parseFile); err != nil {
		return err
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	result := converter.New(parseFile, rt.pipeline, opts).Run()

	if parseRecord {
		if result.Record == nil {
			return result.Error
		}
		data, err := json.MarshalIndent(result.Record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if result.Document == nil {
		return result.Error
	}

	data, err := output.Render(result.Document, parseOutput)
	if err != nil {
		return err
	}
	cmd.OutOrStdout().Write(data)

	if len(result.Document.Validation.Issues) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), validation.FormatIssues(result.Document.Validation))
	}

	return result.Error
}

// commandOptions turns the shared --dialect and --set flags into converter
// options.
func commandOptions(dialect string, assignments []string) (converter.Options, error) {
	var opts converter.Options

	if dialect != "" {
		d, err := types.ParseDialect(dialect)
		if err != nil {
			return opts, apperrors.NewInvalidDialectError(dialect)
		}
		opts.Dialect = d
	}

	values, err := overrides.ParseAssignments(assignments)
	if err != nil {
		return opts, err
	}
	opts.Overrides = values

	return opts, nil
}

// =============================================================================
// VAR Sheet Mapper - Schema Command
// =============================================================================
//
// COMMAND USAGE:
//   varsheet schema [--format json|xml]
//
// Prints the JSON schema of the field map, or the XSD of the XML output, so
// the provisioning side can validate files independently.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/output"
)

// schemaFormat selects the schema to print.
var schemaFormat string

// schemaCmd represents the 'schema' command.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema of the output files",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		switch schemaFormat {
		case output.FormatJSON:
			data, err = output.GenerateJSONSchema()
		case output.FormatXML:
			data, err = output.GenerateXSD()
		default:
			return apperrors.NewInvalidArgumentError("unsupported schema format: " + schemaFormat)
		}
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVar(&schemaFormat, "format", output.FormatJSON, "Schema to print: json or xml")
}

// =============================================================================
// VAR Sheet Mapper - Main Entry Point
// =============================================================================
//
// This is the main entry point for the VAR Sheet Mapper CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   varsheet process       - Map all VAR sheets in the input directory
//   varsheet parse         - Map one sheet and print the fields
//   varsheet detect        - Show the detected dialect of one sheet
//   varsheet schema        - Print the JSON schema or XSD of the output
//   varsheet version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Detection, parsing, mapping, validation and output
//   - pkg/           : Shared file handling utilities
//   - configs/       : Example main configuration
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/VAR-sheet-mapper/cmd"
)

func main() {
	cmd.Execute()
}

// =============================================================================
// VAR Sheet Mapper - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'parse') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (varsheet)
//   ├── processCmd (varsheet process)
//   ├── parseCmd   (varsheet parse)
//   ├── detectCmd  (varsheet detect)
//   ├── schemaCmd  (varsheet schema)
//   └── versionCmd (varsheet version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration, profiles and override workbook
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/converter"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/logger"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/overrides"
	"github.com/ginjaninja78/VAR-sheet-mapper/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// Empty searches for config.yaml in "." and "./configs".
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "varsheet",
	Short: "VAR Sheet Mapper - Map merchant VAR sheets to provisioning fields",
	Long: `VAR Sheet Mapper reads the text extracted from merchant VAR sheets,
recognizes the processor layout (TSYS, Propelr, Heartland, UR), and maps the
sheet to the canonical field set used to board terminals.

Key Features:
  - Automatic dialect detection with a configurable fallback
  - Per-dialect profiles for defaults and value transforms
  - Override layers from config, an XLSX workbook and the command line
  - Validation with per-dialect required fields
  - JSON and XML output, an XLSX batch report and Prometheus metrics

Example Usage:
  varsheet process                          # Process all sheets in the input directory
  varsheet process --config ./my.yaml       # Use a custom configuration file
  varsheet parse --file sheet.txt           # Print the mapped fields of one sheet
  varsheet detect --file sheet.txt          # Show the detected dialect`,

	// SilenceUsage keeps processing failures from printing the usage text.
	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the main configuration file (default searches ./config.yaml and ./configs/config.yaml)",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// RUNTIME SETUP
// =============================================================================

// app bundles what every command needs after configuration loading.
type app struct {
	config   *config.MainConfig
	profiles config.Profiles
	workbook *overrides.Workbook
	logger   logger.Logger
	pipeline *converter.Pipeline
}

// loadRuntime loads the main configuration, the dialect profiles and the
// override workbook, then builds the logger and the shared pipeline and
// creates the input, output and archive directories.
func loadRuntime() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.NewStructured(level, cfg.LogFormat)

	profiles, err := config.LoadProfiles(cfg.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	var workbook *overrides.Workbook
	if cfg.OverridesFile != "" {
		workbook, err = overrides.Load(cfg.OverridesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load overrides file: %w", err)
		}
		if len(workbook.IgnoredColumns) > 0 {
			log.Warn("Ignoring non-canonical override columns", map[string]interface{}{
				"columns": workbook.IgnoredColumns,
			})
		}
	}

	pipeline, err := converter.NewPipeline(cfg, profiles, workbook, log)
	if err != nil {
		return nil, err
	}
	if err := pipeline.FileManager().EnsureDirectories(); err != nil {
		return nil, err
	}

	return &app{
		config:   cfg,
		profiles: profiles,
		workbook: workbook,
		logger:   log,
		pipeline: pipeline,
	}, nil
}

// requireInput fails with FILE_READ_FAILED when path does not exist.
func requireInput(path string) error {
	if !utils.FileExists(path) {
		return apperrors.NewFileReadError(path, os.ErrNotExist)
	}
	return nil
}

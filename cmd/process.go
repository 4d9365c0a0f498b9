// =============================================================================
// VAR Sheet Mapper - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// mapping VAR sheets. It orchestrates the pipeline over the input directory.
//
// COMMAND USAGE:
//   varsheet process [flags]
//
// FLAGS:
//   --dry-run     : Map and validate without writing or archiving anything
//   --single      : Process only a single file (specify with --file)
//   --file        : Path to a specific file to process (used with --single)
//   --dialect     : Force a dialect for every file instead of detecting it
//   --set         : Override a canonical field for every file, KEY=VALUE
//
// PROCESSING PIPELINE:
//   1. Load configuration, profiles and the overrides workbook
//   2. Discover text extracts in the input directory
//   3. For each file (concurrently, at most max_concurrency at a time):
//      a. Detect the dialect
//      b. Parse and map the sheet
//      c. Validate the field map
//      d. Write the JSON/XML output files
//      e. Archive the input when it is clean
//   4. Write the error log and the summary log
//   5. Write the XLSX report and the metrics textfile when configured
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/converter"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/metrics"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/output"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/validation"
	"github.com/ginjaninja78/VAR-sheet-mapper/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun maps and validates without writing output files.
var dryRun bool

// singleFile indicates whether to process only a single file.
var singleFile bool

// filePath is the path to a specific file to process (used with --single).
var filePath string

// processDialect forces a dialect for every file.
var processDialect string

// processSet holds KEY=VALUE overrides applied to every file.
var processSet []string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Map VAR sheets from the input directory",
	Long: `The process command scans the input directory for extracted VAR sheets,
detects the dialect of each one, maps it to the canonical fields and writes
the configured output files.

Processing is done concurrently. Each file is processed independently.

On success:
  - The JSON/XML files are placed in the output directory
  - The original sheet is moved to the input archive
  - A summary log is written to the log directory

On validation errors:
  - The output files are still written for review
  - The original sheet remains in the input directory
  - The issues are written to an error log

With continue_on_error disabled, no new file is started after the first
failure.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Map and validate without writing output files or archiving",
	)

	processCmd.Flags().BoolVar(
		&singleFile,
		"single",
		false,
		"Process only a single file (use with --file)",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific file to process (used with --single)",
	)

	processCmd.Flags().StringVar(
		&processDialect,
		"dialect",
		"",
		"Force a dialect for every file: TSYS, Propelr, Heartland, UR or Unknown",
	)

	processCmd.Flags().StringArrayVar(
		&processSet,
		"set",
		nil,
		"Override a canonical field for every file, KEY=VALUE (repeatable)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the pipeline.
func runProcess() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== VAR Sheet Mapper ===")
	fmt.Println("Loading configuration...")

	opts, err := commandOptions(processDialect, processSet)
	if err != nil {
		return err
	}
	opts.DryRun = dryRun

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()
	cfg := rt.config

	fmt.Printf("Loaded %d dialect profile(s)\n", len(rt.profiles))
	if files := rt.workbook.Files(); len(files) > 0 {
		fmt.Printf("Loaded overrides for %d file(s)\n", len(files))
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	fmt.Println("Discovering input files...")

	var inputFiles []string
	if singleFile {
		if filePath == "" {
			return apperrors.NewInvalidArgumentError("--single requires --file")
		}
		if err := requireInput(filePath); err != nil {
			return err
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = rt.pipeline.FileManager().DiscoverInputFiles(cfg.FilePatterns...)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No VAR sheets found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))
	if dryRun {
		fmt.Println("Dry run: nothing will be written or archived.")
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// A buffered channel bounds the number of files in flight. Results are
	// collected over a second channel once every goroutine is done.

	fmt.Println("Processing files...")

	var wg sync.WaitGroup
	var stop atomic.Bool
	sem := make(chan struct{}, cfg.MaxConcurrency)
	results := make(chan converter.Result, len(inputFiles))

	skipped := 0
	for _, file := range inputFiles {
		sem <- struct{}{}
		if stop.Load() {
			<-sem
			skipped++
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			result := converter.New(path, rt.pipeline, opts).Run()
			if !result.Success && !cfg.ContinueOnError {
				stop.Store(true)
			}
			results <- result
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	var collected []converter.Result
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].FilePath < collected[j].FilePath
	})

	summary := utils.ProcessingSummary{
		StartTime:     startTime,
		TotalFiles:    len(inputFiles),
		DialectCounts: make(map[string]int),
	}
	var errorEntries []utils.ErrorLogEntry
	var reportRows []output.ReportRow

	for _, result := range collected {
		name := filepath.Base(result.FilePath)
		summary.ValidationErrors += result.Stats.ValidationErrors
		summary.ValidationWarnings += result.Stats.ValidationWarnings
		if result.Dialect != "" {
			summary.DialectCounts[result.Dialect.String()]++
		}

		row := output.ReportRow{Source: name, Document: result.Document, Outputs: result.OutputFiles}

		if result.Success {
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:     name,
				OutputFiles:   result.OutputFiles,
				ArchivePath:   result.ArchivePath,
				Dialect:       result.Dialect.String(),
				DialectSource: result.DialectSource,
				Warnings:      result.Stats.ValidationWarnings,
				ProcessTime:   result.Stats.ProcessingTime,
			})
			fmt.Printf("  ✓ %s [%s] -> %d output(s)\n", name, result.Dialect, len(result.OutputFiles))
		} else {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    name,
				ErrorMessage: result.Error.Error(),
				ErrorType:    errorType(result.Error),
			})
			row.Error = result.Error.Error()
			errorEntries = append(errorEntries, fileErrorEntries(name, result)...)
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
		}

		reportRows = append(reportRows, row)
	}
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 5: WRITE LOGS, REPORT AND METRICS
	// =========================================================================

	if !dryRun {
		if len(errorEntries) > 0 {
			logPath, err := utils.WriteErrorLog(errorEntries, cfg.LogDir)
			if err != nil {
				rt.logger.WithError(err).Warn("Failed to write error log", nil)
			} else {
				fmt.Printf("\nErrors have been logged to %s\n", logPath)
			}
		}

		if _, err := utils.WriteSummaryLog(summary, cfg.LogDir); err != nil {
			rt.logger.WithError(err).Warn("Failed to write summary log", nil)
		}

		if cfg.ReportFile != "" {
			if err := output.WriteReport(cfg.ReportFile, reportRows); err != nil {
				rt.logger.WithError(err).Warn("Failed to write report", nil)
			} else {
				fmt.Printf("Report written to %s\n", cfg.ReportFile)
			}
		}

		if cfg.MetricsFile != "" {
			if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				rt.logger.WithError(err).Warn("Failed to write metrics", nil)
			}
		}
	}

	// =========================================================================
	// STEP 6: PRINT SUMMARY
	// =========================================================================

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(inputFiles))
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	if skipped > 0 {
		fmt.Printf("Skipped:         %d\n", skipped)
	}
	fmt.Printf("Warnings:        %d\n", summary.ValidationWarnings)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, len(inputFiles))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// errorType names the error class for the logs.
func errorType(err error) string {
	if code := apperrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "PROCESSING_FAILED"
}

// fileErrorEntries returns one log entry per validation error of a failed
// file, or a single entry when the file failed for another reason.
func fileErrorEntries(name string, result converter.Result) []utils.ErrorLogEntry {
	now := time.Now()
	dialect := result.Dialect.String()

	if result.Document == nil || result.Document.Validation == nil || result.Document.Validation.IsValid {
		return []utils.ErrorLogEntry{{
			Timestamp:    now,
			FileName:     name,
			Dialect:      dialect,
			ErrorType:    errorType(result.Error),
			ErrorMessage: result.Error.Error(),
		}}
	}

	var entries []utils.ErrorLogEntry
	for _, issue := range result.Document.Validation.Issues {
		if issue.Severity != validation.SeverityError {
			continue
		}
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     name,
			Dialect:      dialect,
			ErrorType:    issue.Rule,
			ErrorMessage: issue.Message,
			FieldName:    issue.Field,
			FieldValue:   result.Document.Fields[issue.Field],
		})
	}
	return entries
}

// =============================================================================
// VAR Sheet Mapper - Converter Module
// =============================================================================
//
// This module contains the per-file pipeline. It takes one extracted VAR sheet
// from text to mapped, validated output files.
//
// CONVERSION PIPELINE:
//   1. Read the text extract (decompressing by extension)
//   2. Resolve the dialect: forced flag, else detection, else the fallback
//   3. Parse the sheet with the dialect parser
//   4. Merge overrides: config defaults < workbook row < command line
//   5. Map the record to the canonical field map
//   6. Validate the field map
//   7. Render and write the output files
//   8. Archive the input (clean sheets only) and copy the outputs
//
// A sheet with validation errors still gets its output files, so the fields
// can be reviewed, but it is reported as failed and stays in the input
// directory.
//
// CONCURRENCY:
//   A Pipeline is shared by all files of a run and holds no per-file state.
//   Each file gets its own Converter.
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/logger"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/mapper"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/metrics"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/output"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/overrides"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/validation"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/varparser"
	"github.com/ginjaninja78/VAR-sheet-mapper/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFiles are the generated files, one per output format.
	// Empty on dry runs and when processing failed before rendering.
	OutputFiles []string

	// ArchivePath is where the input was moved. Empty when not archived.
	ArchivePath string

	// Dialect is the dialect the sheet was parsed with.
	Dialect types.Dialect

	// DialectSource is output.DialectSourceFlag, DialectSourceDetected or
	// DialectSourceFallback.
	DialectSource string

	// Record is a copy of what the parser extracted, before overrides and
	// mapping. Nil if processing failed before parsing.
	Record *types.ParsedRecord

	// Document is the mapped sheet. Nil if processing failed before mapping.
	Document *output.Document

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// FieldsExtracted is the number of non-empty values the parser found.
	FieldsExtracted int

	// FieldsMapped is the number of non-empty canonical fields.
	FieldsMapped int

	// ValidationErrors is the number of validation errors.
	ValidationErrors int

	// ValidationWarnings is the number of validation warnings.
	ValidationWarnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline holds everything shared by the files of one run.
type Pipeline struct {
	config      *config.MainConfig
	registry    *varparser.Registry
	mapper      *mapper.Mapper
	validator   *validation.Validator
	workbook    *overrides.Workbook
	fileManager *utils.FileManager
	logger      logger.Logger
}

// NewPipeline builds the shared pipeline.
//
// PARAMETERS:
//   - cfg: The main configuration.
//   - profiles: The dialect profiles. Nil selects the built-in profiles.
//   - workbook: The per-file overrides. May be nil.
//   - log: The logger. Nil discards log output.
//
// RETURNS:
//   - The pipeline, or an error if a profile's name rejection pattern does
//     not compile.
func NewPipeline(cfg *config.MainConfig, profiles config.Profiles, workbook *overrides.Workbook, log logger.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, apperrors.NewInvalidArgumentError("config is nil")
	}
	if profiles == nil {
		profiles = config.DefaultProfiles()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	registry, err := varparser.NewRegistry(varparser.Options{NameRejections: profiles.NameRejections()})
	if err != nil {
		return nil, apperrors.NewConfigInvalidError("name_rejections", err)
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveInputs

	return &Pipeline{
		config:      cfg,
		registry:    registry,
		mapper:      mapper.New(profiles),
		validator:   validation.NewValidator(validation.Options{CheckFormats: cfg.CheckFormats}),
		workbook:    workbook,
		fileManager: fm,
		logger:      log,
	}, nil
}

// FileManager returns the pipeline's file manager.
func (p *Pipeline) FileManager() *utils.FileManager {
	return p.fileManager
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options are the per-file settings that come from the command line.
type Options struct {
	// Dialect forces a dialect. Empty means detect.
	Dialect types.Dialect

	// Overrides are the command-line overrides, the last layer.
	Overrides map[string]string

	// DryRun maps and validates without writing or archiving anything.
	DryRun bool
}

// Converter handles the conversion of a single VAR sheet.
type Converter struct {
	// inputPath is the path to the input text extract.
	inputPath string

	pipeline *Pipeline
	options  Options
	logger   logger.Logger
}

// New creates a new Converter instance for one input file.
func New(inputPath string, pipeline *Pipeline, options Options) *Converter {
	return &Converter{
		inputPath: inputPath,
		pipeline:  pipeline,
		options:   options,
		logger:    pipeline.logger.WithFields(map[string]interface{}{"file": filepath.Base(inputPath)}),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() Result {
	startTime := time.Now()
	metrics.FilesActive.Inc()
	defer metrics.FilesActive.Dec()

	result := Result{
		FilePath: c.inputPath,
		Success:  false,
	}

	defer func() {
		dialect := result.Dialect.String()
		if dialect == "" {
			dialect = "none"
		}
		metrics.ObserveFile(dialect, statusOf(result), result.Stats.FieldsExtracted, result.Stats.ProcessingTime)
	}()

	c.logger.Info("Processing file", map[string]interface{}{"path": c.inputPath})

	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	text, err := utils.ReadTextLimit(c.inputPath, c.pipeline.config.MaxInputBytes)
	if err != nil {
		result.Error = apperrors.NewFileReadError(c.inputPath, err)
		c.logger.WithError(result.Error).Error("Failed to read input", nil)
		return finish(&result, startTime)
	}

	// =========================================================================
	// STEP 2: RESOLVE DIALECT
	// =========================================================================

	d, source := c.resolveDialect(text)
	result.Dialect = d
	result.DialectSource = source
	metrics.DialectDetections.WithLabelValues(d.String(), source).Inc()
	c.logger.Debug("Resolved dialect", map[string]interface{}{"dialect": d.String(), "source": source})

	// =========================================================================
	// STEP 3: PARSE
	// =========================================================================

	rec, err := c.pipeline.registry.Parse(text, d)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse sheet: %w", err)
		return finish(&result, startTime)
	}
	result.Stats.FieldsExtracted = rec.FieldCount()
	if rec.IsEmpty() {
		c.logger.Warn("No fields extracted", map[string]interface{}{"dialect": d.String()})
	}

	// Callers get their own copy; the mapper keeps reading rec.
	result.Record, err = rec.Clone()
	if err != nil {
		result.Error = err
		return finish(&result, startTime)
	}

	// =========================================================================
	// STEP 4-5: OVERRIDES AND MAPPING
	// =========================================================================

	ovr := overrides.Merge(
		c.pipeline.config.DefaultOverrides,
		c.pipeline.workbook.For(c.inputPath),
		c.options.Overrides,
	)

	fields, err := c.pipeline.mapper.Map(rec, ovr, d)
	if err != nil {
		result.Error = fmt.Errorf("failed to map sheet: %w", err)
		return finish(&result, startTime)
	}
	result.Stats.FieldsMapped = countNonEmpty(fields)

	// =========================================================================
	// STEP 6: VALIDATE
	// =========================================================================

	verdict := c.pipeline.validator.Validate(fields, d)
	result.Stats.ValidationErrors = len(verdict.Errors)
	result.Stats.ValidationWarnings = len(verdict.Warnings)
	metrics.ObserveIssues(d.String(), len(verdict.Errors), len(verdict.Warnings))

	for _, issue := range verdict.Issues {
		logFields := map[string]interface{}{"field": issue.Field, "rule": issue.Rule}
		if issue.Severity == validation.SeverityError {
			c.logger.Error(issue.Message, logFields)
		} else {
			c.logger.Warn(issue.Message, logFields)
		}
	}

	result.Document = &output.Document{
		Source:        filepath.Base(c.inputPath),
		Dialect:       d,
		DialectSource: source,
		GeneratedAt:   time.Now().UTC(),
		Fields:        fields,
		Validation:    verdict,
	}

	if c.options.DryRun {
		if !verdict.IsValid {
			result.Error = apperrors.NewValidationFailedError(len(verdict.Errors))
			return finish(&result, startTime)
		}
		result.Success = true
		return finish(&result, startTime)
	}

	// =========================================================================
	// STEP 7: WRITE OUTPUT FILES
	// =========================================================================

	outputs, err := c.writeOutputs(result.Document)
	result.OutputFiles = outputs
	if err != nil {
		result.Error = err
		c.logger.WithError(err).Error("Failed to write output", nil)
		return finish(&result, startTime)
	}

	if !verdict.IsValid {
		result.Error = apperrors.NewValidationFailedError(len(verdict.Errors))
		return finish(&result, startTime)
	}

	// =========================================================================
	// STEP 8: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(&result); err != nil {
		// Log the error but don't fail the processing.
		c.logger.WithError(err).Warn("Failed to archive files", nil)
	}

	result.Success = true
	c.logger.Info("Processed file", map[string]interface{}{
		"dialect":  d.String(),
		"outputs":  len(result.OutputFiles),
		"warnings": len(verdict.Warnings),
	})

	return finish(&result, startTime)
}

// resolveDialect picks the forced dialect, else the detected one, else the
// configured fallback.
func (c *Converter) resolveDialect(text string) (types.Dialect, string) {
	if c.options.Dialect != "" {
		return c.options.Dialect, output.DialectSourceFlag
	}
	if d := varparser.Detect(text); d != types.DialectUnknown {
		return d, output.DialectSourceDetected
	}
	return c.pipeline.config.Fallback(), output.DialectSourceFallback
}

// writeOutputs renders and writes one file per configured format.
//
// FILE NAMING:
//   The base name comes from output_name_format with {name} and {dialect}
//   filled in; the extension is the format name.
func (c *Converter) writeOutputs(doc *output.Document) ([]string, error) {
	cfg := c.pipeline.config
	params := map[string]string{
		"name":    utils.BaseName(c.inputPath),
		"dialect": doc.Dialect.String(),
	}

	// One name stem per file so that the formats share {uuid} and
	// {timestamp}.
	stem := utils.GenerateOutputFileName(cfg.OutputNameFormat, "", params)

	var written []string
	for _, format := range cfg.OutputFormats {
		data, err := output.Render(doc, format)
		if err != nil {
			return written, fmt.Errorf("failed to render %s: %w", format, err)
		}

		path := filepath.Join(cfg.OutputDir, stem+"."+format)
		if err := output.WriteFile(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
		c.logger.Debug("Wrote output", map[string]interface{}{"path": path})
	}
	return written, nil
}

// archiveFiles moves the input to the input archive and copies the outputs
// to the output archive.
func (c *Converter) archiveFiles(result *Result) error {
	if !c.pipeline.config.ArchiveInputs {
		return nil
	}
	fm := c.pipeline.fileManager

	for _, out := range result.OutputFiles {
		if _, err := fm.ArchiveOutputFile(out); err != nil {
			return fmt.Errorf("failed to archive output file: %w", err)
		}
	}

	archived, err := fm.ArchiveInputFile(c.inputPath)
	if err != nil {
		return fmt.Errorf("failed to archive input file: %w", err)
	}
	result.ArchivePath = archived
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func finish(result *Result, startTime time.Time) Result {
	result.Stats.ProcessingTime = time.Since(startTime)
	return *result
}

func statusOf(result Result) string {
	switch {
	case result.Success:
		return metrics.StatusSuccess
	case apperrors.HasCode(result.Error, apperrors.ErrCodeValidationFailed):
		return metrics.StatusInvalid
	default:
		return metrics.StatusFailed
	}
}

func countNonEmpty(fields types.FieldMap) int {
	n := 0
	for _, v := range fields {
		if v != "" {
			n++
		}
	}
	return n
}

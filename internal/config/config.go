// =============================================================================
// VAR Sheet Mapper - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration. It
// handles both the main application configuration and the per-dialect
// profiles.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults
//   2. Main config file (config.yaml)
//   3. .env file, loaded into the process environment
//   4. Environment variables prefixed with VARSHEET_ (e.g. VARSHEET_OUTPUT_DIR)
//
// DIALECT PROFILES:
//   Profiles (profiles/*.yaml) hold the per-dialect constants used by the
//   mapper: the RKL device group name, default field values, the MHC debit
//   constants and the Heartland merchant name rejections. See profile.go.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "VARSHEET"

// Supported output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatXML  = "xml"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for extracted VAR sheet text files.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir is the directory where mapped field files are written.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// InputArchiveDir receives input files after they were processed
	// successfully.
	// Default: "./input_archive"
	InputArchiveDir string `mapstructure:"input_archive_dir" yaml:"input_archive_dir"`

	// OutputArchiveDir is available for long-term storage of output files.
	// Default: "./output_archive"
	OutputArchiveDir string `mapstructure:"output_archive_dir" yaml:"output_archive_dir"`

	// ProfilesDir contains the dialect profile files. A missing or empty
	// directory selects the built-in profiles.
	// Default: "./profiles"
	ProfilesDir string `mapstructure:"profiles_dir" yaml:"profiles_dir"`

	// LogDir receives the per-file error logs and the run summary log.
	// Default: "./logs"
	LogDir string `mapstructure:"log_dir" yaml:"log_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat selects the zap encoder.
	// Valid values: "json", "console"
	// Default: "console"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the format for output file names, without
	// the extension.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {dialect}   - Dialect used for the file (TSYS, Propelr, ...)
	//   {name}      - Input file name without extensions
	//
	// Default: "{name}_{dialect}_{timestamp}"
	OutputNameFormat string `mapstructure:"output_name_format" yaml:"output_name_format"`

	// OutputFormats lists the files written for each input.
	// Valid values: "json", "xml"
	// Default: ["json"]
	OutputFormats []string `mapstructure:"output_formats" yaml:"output_formats"`

	// ReportFile is the XLSX batch report written after 'process'.
	// Empty disables the report.
	ReportFile string `mapstructure:"report_file" yaml:"report_file"`

	// MetricsFile is the Prometheus textfile written after 'process'.
	// Empty disables the export.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// =========================================================================
	// MAPPING SETTINGS
	// =========================================================================

	// OverridesFile is an optional XLSX workbook, or CSV/TSV file, with
	// per-file override values. See the overrides package for the layout.
	OverridesFile string `mapstructure:"overrides_file" yaml:"overrides_file"`

	// DefaultOverrides are applied to every file before workbook and
	// command-line overrides. Keys must be canonical field names; case is
	// ignored.
	//
	// Example:
	//   default_overrides:
	//     Contactless_Signature: "Y"
	DefaultOverrides map[string]string `mapstructure:"default_overrides" yaml:"default_overrides"`

	// FallbackDialect is used when auto-detection finds no anchors.
	// "Unknown" selects the generic parser, which extracts nothing.
	// Default: "TSYS"
	FallbackDialect string `mapstructure:"fallback_dialect" yaml:"fallback_dialect"`

	// CheckFormats adds warnings for values that do not have the expected
	// shape (digits only, fixed lengths, ZIP format).
	// Default: false
	CheckFormats bool `mapstructure:"check_formats" yaml:"check_formats"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// FilePatterns are the glob patterns matched against file names in
	// InputDir. Compressed text (.gz, .bz2, .xz, .zst, .lz4) is supported.
	FilePatterns []string `mapstructure:"file_patterns" yaml:"file_patterns"`

	// MaxInputBytes caps the decompressed size of one input extract. Larger
	// inputs fail with FILE_READ_FAILED.
	// Default: 8 MiB
	MaxInputBytes int64 `mapstructure:"max_input_bytes" yaml:"max_input_bytes"`

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ContinueOnError determines whether to continue processing other files
	// if one file fails.
	// Default: true
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`

	// ArchiveInputs moves successfully processed inputs to InputArchiveDir.
	// Default: true
	ArchiveInputs bool `mapstructure:"archive_inputs" yaml:"archive_inputs"`
}

// DefaultFilePatterns match plain and compressed text extracts.
var DefaultFilePatterns = []string{
	"*.txt",
	"*.txt.gz",
	"*.txt.bz2",
	"*.txt.xz",
	"*.txt.zst",
	"*.txt.lz4",
}

// DefaultMaxInputBytes is the decompressed size cap for one input extract.
const DefaultMaxInputBytes int64 = 8 << 20

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. When empty,
//     config.yaml is searched in "." and "./configs" and may be absent.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func Load(configPath string) (*MainConfig, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, apperrors.NewConfigInvalidError("failed to read config file", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigInvalidError("failed to unmarshal config", err)
	}

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, apperrors.NewConfigInvalidError("invalid configuration", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory when present. Existing
// environment variables are not overwritten.
func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// setDefaults registers every key with viper so environment variables can
// override keys the config file does not mention.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("input_archive_dir", "./input_archive")
	v.SetDefault("output_archive_dir", "./output_archive")
	v.SetDefault("profiles_dir", "./profiles")
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("output_name_format", "{name}_{dialect}_{timestamp}")
	v.SetDefault("output_formats", []string{OutputFormatJSON})
	v.SetDefault("report_file", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("overrides_file", "")
	v.SetDefault("fallback_dialect", string(types.DialectTSYS))
	v.SetDefault("check_formats", false)
	v.SetDefault("file_patterns", DefaultFilePatterns)
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("max_input_bytes", DefaultMaxInputBytes)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("archive_inputs", true)
}

// applyMainConfigDefaults fills values the config file set to empty.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{name}_{dialect}_{timestamp}"
	}
	if len(config.OutputFormats) == 0 {
		config.OutputFormats = []string{OutputFormatJSON}
	}
	if config.FallbackDialect == "" {
		config.FallbackDialect = string(types.DialectTSYS)
	}
	if len(config.FilePatterns) == 0 {
		config.FilePatterns = append([]string(nil), DefaultFilePatterns...)
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.MaxInputBytes <= 0 {
		config.MaxInputBytes = DefaultMaxInputBytes
	}
	if config.DefaultOverrides == nil {
		config.DefaultOverrides = map[string]string{}
	}
	for i, f := range config.OutputFormats {
		config.OutputFormats[i] = strings.ToLower(strings.TrimSpace(f))
	}
}

// validateMainConfig validates the main configuration and creates the
// working directories.
func validateMainConfig(config *MainConfig) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", config.LogLevel)
	}

	switch config.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format %q must be json or console", config.LogFormat)
	}

	for _, f := range config.OutputFormats {
		if f != OutputFormatJSON && f != OutputFormatXML {
			return fmt.Errorf("output_formats: unsupported format %q", f)
		}
	}

	if _, err := types.ParseDialect(config.FallbackDialect); err != nil {
		return fmt.Errorf("fallback_dialect: %w", err)
	}

	normalized := make(map[string]string, len(config.DefaultOverrides))
	for k, v := range config.DefaultOverrides {
		key, ok := types.LookupCanonicalKey(k)
		if !ok {
			return fmt.Errorf("default_overrides: %q is not a canonical field", k)
		}
		normalized[key] = v
	}
	config.DefaultOverrides = normalized

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.LogDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// Fallback returns the dialect used when auto-detection fails.
func (c *MainConfig) Fallback() types.Dialect {
	d, err := types.ParseDialect(c.FallbackDialect)
	if err != nil {
		return types.DialectTSYS
	}
	return d
}

// WantsFormat reports whether format is listed in OutputFormats.
func (c *MainConfig) WantsFormat(format string) bool {
	for _, f := range c.OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

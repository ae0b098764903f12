package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for every environment override, e.g. BRONZE_START_YEAR.
const EnvPrefix = "BRONZE"

const (
	ProfileZero    = "zero"
	ProfileMissing = "missing"

	MatchContains = "contains"
	MatchPrefix   = "prefix"

	// LayoutPerYear expects a Total column after every twelfth month.
	LayoutPerYear = "per-year"
	// LayoutTrailing additionally expects the last, partial year to end in a Total.
	LayoutTrailing = "trailing"
	// LayoutAuto picks one of the above from the sheet width.
	LayoutAuto = "auto"
)

// Config holds everything a conversion run needs. Cleaning fields left
// unset (nil or empty) fall back to the selected profile.
type Config struct {
	InputDir        string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	OutputDir       string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	CreateOutputDir bool   `yaml:"create_output_dir" envconfig:"CREATE_OUTPUT_DIR"`
	Sheet           string `yaml:"sheet" envconfig:"SHEET"`

	StartYear int `yaml:"start_year" envconfig:"START_YEAR"`
	EndYear   int `yaml:"end_year" envconfig:"END_YEAR"`
	EndMonth  int `yaml:"end_month" envconfig:"END_MONTH"`

	Profile          string   `yaml:"profile" envconfig:"PROFILE"`
	Sentinel         *string  `yaml:"sentinel" envconfig:"SENTINEL"`
	TotalLayout      string   `yaml:"total_layout" envconfig:"TOTAL_LAYOUT"`
	PruneMissingRows *bool    `yaml:"prune_missing_rows" envconfig:"PRUNE_MISSING_ROWS"`
	MarkerMatch      string   `yaml:"marker_match" envconfig:"MARKER_MATCH"`
	Markers          []string `yaml:"markers" envconfig:"MARKERS"`
	CheckTotals      bool     `yaml:"check_totals" envconfig:"CHECK_TOTALS"`

	KeepGoing bool `yaml:"keep_going" envconfig:"KEEP_GOING"`

	Logging LoggingConfig `yaml:"logging" envconfig:"LOG"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Rules is the resolved set of cleaning rules for one profile.
type Rules struct {
	Sentinel         string
	TotalLayout      string
	PruneMissingRows bool
	MarkerMatch      string
	Markers          []string
}

// Default mirrors the constants the dataset was first processed with.
func Default() Config {
	return Config{
		InputDir:        filepath.Join("data", "original"),
		OutputDir:       filepath.Join("data", "bronze"),
		CreateOutputDir: true,
		StartYear:       2021,
		EndYear:         2024,
		EndMonth:        3,
		Profile:         ProfileZero,
		CheckTotals:     true,
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: filepath.Join("logs", "bronze.log"),
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, an optional
// .env file and the process environment, in that order of precedence.
// A missing file at path is only an error when path was given explicitly.
// The result is not validated: callers apply their overrides first and then
// call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else if _, err := os.Stat("bronze.yaml"); err == nil {
		if err := loadFile("bronze.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input_dir is required")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.StartYear <= 0 {
		return fmt.Errorf("start_year must be positive, got %d", c.StartYear)
	}
	if c.EndMonth < 0 || c.EndMonth > 12 {
		return fmt.Errorf("end_month must be between 1 and 12, got %d", c.EndMonth)
	}
	if c.EndYear != 0 && c.EndYear < c.StartYear {
		return fmt.Errorf("end_year %d is before start_year %d", c.EndYear, c.StartYear)
	}

	switch strings.ToLower(c.Profile) {
	case ProfileZero, ProfileMissing:
	default:
		return fmt.Errorf("invalid profile: %s (must be zero or missing)", c.Profile)
	}

	switch strings.ToLower(c.TotalLayout) {
	case "", LayoutPerYear, LayoutTrailing, LayoutAuto:
	default:
		return fmt.Errorf("invalid total_layout: %s (must be per-year, trailing or auto)", c.TotalLayout)
	}

	switch strings.ToLower(c.MarkerMatch) {
	case "", MatchContains, MatchPrefix:
	default:
		return fmt.Errorf("invalid marker_match: %s (must be contains or prefix)", c.MarkerMatch)
	}

	if c.Sentinel != nil && *c.Sentinel == "" {
		return errors.New("sentinel must not be empty")
	}

	return nil
}

// Rules resolves the profile preset and applies any explicit overrides.
func (c *Config) Rules() Rules {
	var r Rules
	if strings.ToLower(c.Profile) == ProfileMissing {
		r = Rules{
			Sentinel:         "Missing",
			TotalLayout:      LayoutTrailing,
			PruneMissingRows: true,
			MarkerMatch:      MatchContains,
			Markers:          []string{"Total", "Source", "Data"},
		}
	} else {
		r = Rules{
			Sentinel:    "0",
			TotalLayout: LayoutAuto,
			MarkerMatch: MatchContains,
			Markers:     []string{"Total", "Source", "Data"},
		}
	}

	if c.Sentinel != nil {
		r.Sentinel = *c.Sentinel
	}
	if c.TotalLayout != "" {
		r.TotalLayout = strings.ToLower(c.TotalLayout)
	}
	if c.PruneMissingRows != nil {
		r.PruneMissingRows = *c.PruneMissingRows
	}
	if c.MarkerMatch != "" {
		r.MarkerMatch = strings.ToLower(c.MarkerMatch)
	}
	if len(c.Markers) > 0 {
		r.Markers = c.Markers
	}

	return r
}

// NumericSentinel reports whether the sentinel is compared as a whole value
// (the zero profile) rather than as a label prefix.
func (r Rules) NumericSentinel() bool {
	return r.Sentinel == "0"
}

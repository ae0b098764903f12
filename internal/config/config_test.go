package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 2021, cfg.StartYear)
	assert.Equal(t, 2024, cfg.EndYear)
	assert.Equal(t, 3, cfg.EndMonth)
	assert.Equal(t, ProfileZero, cfg.Profile)
	assert.Equal(t, filepath.Join("data", "original"), cfg.InputDir)
	assert.Equal(t, filepath.Join("data", "bronze"), cfg.OutputDir)
	assert.NoError(t, cfg.Validate())
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		expected Rules
	}{
		{
			name:   "zero profile",
			mutate: func(c *Config) {},
			expected: Rules{
				Sentinel:    "0",
				TotalLayout: LayoutAuto,
				MarkerMatch: MatchContains,
				Markers:     []string{"Total", "Source", "Data"},
			},
		},
		{
			name:   "missing profile",
			mutate: func(c *Config) { c.Profile = ProfileMissing },
			expected: Rules{
				Sentinel:         "Missing",
				TotalLayout:      LayoutTrailing,
				PruneMissingRows: true,
				MarkerMatch:      MatchContains,
				Markers:          []string{"Total", "Source", "Data"},
			},
		},
		{
			name: "overrides win over profile",
			mutate: func(c *Config) {
				c.Profile = ProfileMissing
				c.TotalLayout = LayoutPerYear
				c.MarkerMatch = "PREFIX"
				c.Markers = []string{"Total", "Notes"}
			},
			expected: Rules{
				Sentinel:         "Missing",
				TotalLayout:      LayoutPerYear,
				PruneMissingRows: true,
				MarkerMatch:      MatchPrefix,
				Markers:          []string{"Total", "Notes"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Equal(t, tt.expected, cfg.Rules())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad profile", func(c *Config) { c.Profile = "pandas" }, true},
		{"bad month", func(c *Config) { c.EndMonth = 13 }, true},
		{"end before start", func(c *Config) { c.EndYear = 2019 }, true},
		{"no input", func(c *Config) { c.InputDir = "" }, true},
		{"bad match", func(c *Config) { c.MarkerMatch = "regex" }, true},
		{"bad layout", func(c *Config) { c.TotalLayout = "sometimes" }, true},
		{"empty sentinel", func(c *Config) { s := ""; c.Sentinel = &s }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bronze.yaml")
	content := []byte("input_dir: in\noutput_dir: out\nstart_year: 2019\nprofile: missing\nmarkers: [Total, Source]\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	t.Setenv("BRONZE_START_YEAR", "2020")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 2020, cfg.StartYear)
	assert.Equal(t, ProfileMissing, cfg.Profile)
	assert.Equal(t, []string{"Total", "Source"}, cfg.Rules().Markers)
	// untouched defaults survive the file
	assert.True(t, cfg.CreateOutputDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnvLeftToValidate(t *testing.T) {
	t.Setenv("BRONZE_PROFILE", "weird")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "weird", cfg.Profile)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid profile")

	cfg.Profile = ProfileZero
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MalformedEnv(t *testing.T) {
	t.Setenv("BRONZE_START_YEAR", "twenty")

	_, err := Load("")
	assert.Error(t, err)
}

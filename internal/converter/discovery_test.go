package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"table.xlsx", "table.csv"},
		{"Table 1 - Admissions (2021).xlsx", "Table1Admissions2021.csv"},
		{"über_daten.xlsx", "berdaten.csv"},
		{"a.xlsx.xlsx", "a.csv.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, OutputName(tt.input), tt.input)
	}
}

func TestListInputs(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		dirs     []string
		expected []string
	}{
		{
			name:     "Only workbooks",
			files:    []string{"b.xlsx", "a.xlsx"},
			expected: []string{"a.xlsx", "b.xlsx"},
		},
		{
			name:     "Mixed entries",
			files:    []string{"a.xlsx", "notes.txt", "old.xls", "UPPER.XLSX", "~$a.xlsx"},
			dirs:     []string{"nested.xlsx"},
			expected: []string{"a.xlsx"},
		},
		{
			name:     "Empty directory",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644))
			}
			for _, d := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
			}

			got, err := ListInputs(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestListInputs_MissingDir(t *testing.T) {
	_, err := ListInputs(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

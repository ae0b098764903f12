package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	InputExt  = ".xlsx"
	OutputExt = ".csv"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9.]+`)

// ListInputs returns the names of regular .xlsx files in dir, in name order.
// Directories, other extensions and Excel lock files are skipped.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !isRegular(dir, entry) {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, InputExt) || strings.HasPrefix(name, "~$") {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

// OutputName derives the CSV file name for an input workbook name:
// everything outside [A-Za-z0-9.] is removed, then .xlsx becomes .csv.
func OutputName(inputName string) string {
	cleaned := unsafeNameChars.ReplaceAllString(inputName, "")
	return strings.ReplaceAll(cleaned, InputExt, OutputExt)
}

// isRegular follows symlinks, so a link to a workbook is still picked up.
func isRegular(dir string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

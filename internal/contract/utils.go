package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	ActiveColor   = color.New(color.FgGreen)           // author committed within the inactivity threshold
	InactiveColor = color.New(color.FgRed, color.Bold) // author has gone quiet
	HotColor      = color.New(color.FgMagenta, color.Bold)
	HeaderColor   = color.New(color.FgCyan)
)

// ActivityLabel returns the plain label for an author's activity state.
func ActivityLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// ColorActivityLabel returns a colored activity label for console output (table).
func ColorActivityLabel(active bool) string {
	if active {
		return ActiveColor.Sprint(ActivityLabel(active))
	}
	return InactiveColor.Sprint(ActivityLabel(active))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetDBFilePath returns the path to the SQLite DB file for result storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hotspotter.db"
	}
	return filepath.Join(homeDir, ".hotspotter.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

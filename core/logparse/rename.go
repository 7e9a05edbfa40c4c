package logparse

import (
	"regexp"
	"strings"
)

var (
	// src/{old => new}/File.go; either side may be empty.
	partialRenameRe = regexp.MustCompile(`\{([^{}]*?)\s=>\s([^{}]*?)}`)
	// old/path => new/path
	fullRenameRe  = regexp.MustCompile(`^([^{}]*?)\s=>\s([^{}]*?)$`)
	doubleSlashRe = regexp.MustCompile(`/{2,}`)
)

// resolvePath splits a numstat path into its old and new sides. Both are
// empty when the path carries no rename notation.
func resolvePath(raw string) (oldPath, newPath string) {
	if strings.Contains(raw, "{") && partialRenameRe.MatchString(raw) {
		oldPath = cleanPath(partialRenameRe.ReplaceAllString(raw, "${1}"))
		newPath = cleanPath(partialRenameRe.ReplaceAllString(raw, "${2}"))
		return oldPath, newPath
	}
	if m := fullRenameRe.FindStringSubmatch(raw); m != nil {
		return cleanPath(m[1]), cleanPath(m[2])
	}
	return "", ""
}

// cleanPath collapses the doubled separators left behind by an empty rename
// side and trims stray separators and spaces.
func cleanPath(p string) string {
	p = doubleSlashRe.ReplaceAllString(p, "/")
	return strings.Trim(strings.TrimSpace(p), "/")
}

package textutil

import (
	"regexp"
	"strings"
)

// unsafeFilenamePattern matches characters that are unsafe in filenames.
var unsafeFilenamePattern = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename replaces unsafe filename characters and collapses runs of
// whitespace into single underscores. Returns "untitled" for empty input.
func SanitizeFilename(name string) string {
	cleaned := unsafeFilenamePattern.ReplaceAllString(name, "_")
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	cleaned = strings.Trim(cleaned, "._ ")
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

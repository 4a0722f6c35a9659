package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename cleans a filename taken from an untrusted source, such
// as a Content-Disposition header, so it is safe to use on the local
// filesystem. Path separators and control characters are stripped, runs of
// whitespace are collapsed, overlong names are truncated.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leave room for an extension on filesystems with a 255 byte limit
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	return filename
}

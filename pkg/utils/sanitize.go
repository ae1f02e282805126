package utils

import (
	"regexp"
	"strings"
)

// --- Filename Sanitization ---
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`) // Characters invalid in Windows/Unix filenames
var consecutiveUnderscores = regexp.MustCompile(`_+`)                  // Pattern to replace multiple underscores with one

const (
	maxFilenameLength = 100 // Max length for SanitizeFilename output
	maxSegmentLength  = 200 // Max length for SanitizePathSegment output (most filesystems cap at 255 bytes)
	fallbackFilename  = "untitled"
)

// SanitizeFilename cleans a string to be safe for use as a filename component
func SanitizeFilename(name string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(name, "_")       // Replace invalid chars with underscore
	sanitized = consecutiveUnderscores.ReplaceAllString(sanitized, "_") // Collapse multiple underscores
	sanitized = strings.Trim(sanitized, "_ ")                           // Remove leading/trailing underscores or spaces

	if len(sanitized) > maxFilenameLength {
		sanitized = sanitized[:maxFilenameLength]
		sanitized = strings.Trim(sanitized, "_ ")
	}

	if sanitized == "" {
		sanitized = fallbackFilename
	}
	return sanitized
}

// SanitizePathSegment makes a single path segment safe to join under a directory.
// Unlike SanitizeFilename it keeps underscores and surrounding characters intact,
// so mirrored names like "_docs_intro.html" survive unchanged.
func SanitizePathSegment(segment string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(segment, "_")
	if len(sanitized) > maxSegmentLength {
		sanitized = sanitized[:maxSegmentLength]
	}
	switch strings.TrimSpace(sanitized) {
	case "", ".", "..":
		return fallbackFilename
	}
	return sanitized
}

package packager

import "strings"

// DefaultIgnorePatterns excludes binary and media files, which add size to
// the packaged codebase without helping the analysis.
var DefaultIgnorePatterns = []string{
	// Image files
	"**/*.svg", "**/*.png", "**/*.jpg", "**/*.jpeg", "**/*.gif", "**/*.bmp",
	"**/*.tiff", "**/*.tif", "**/*.webp", "**/*.ico", "**/*.icns",
	// Video files
	"**/*.mp4", "**/*.avi", "**/*.mov", "**/*.wmv", "**/*.flv", "**/*.webm", "**/*.mkv",
	// Audio files
	"**/*.mp3", "**/*.wav", "**/*.flac", "**/*.aac", "**/*.ogg", "**/*.wma",
	// Archive files
	"**/*.zip", "**/*.rar", "**/*.7z", "**/*.tar", "**/*.gz", "**/*.bz2",
	// Font files
	"**/*.ttf", "**/*.otf", "**/*.woff", "**/*.woff2", "**/*.eot",
	// Binary executables
	"**/*.exe", "**/*.dll", "**/*.so", "**/*.dylib",
	// Office documents
	"**/*.pdf", "**/*.doc", "**/*.docx", "**/*.xls", "**/*.xlsx", "**/*.ppt", "**/*.pptx",
}

// ParseIgnorePatterns splits a comma-separated pattern list, trimming each
// entry and dropping empty ones. Order is preserved.
//
// Patterns are not validated as glob syntax; malformed patterns are handed
// to the packaging tool as-is.
//
// Example:
//
//	"a, b ,,c" → ["a", "b", "c"]
func ParseIgnorePatterns(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// BuildIgnorePatterns returns the built-in exclusions followed by the parsed
// additional patterns. The result is a fresh slice; DefaultIgnorePatterns is
// never modified.
func BuildIgnorePatterns(additional string) []string {
	extra := ParseIgnorePatterns(additional)
	out := make([]string, 0, len(DefaultIgnorePatterns)+len(extra))
	out = append(out, DefaultIgnorePatterns...)
	return append(out, extra...)
}

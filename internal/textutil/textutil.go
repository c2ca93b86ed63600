package textutil

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugPattern collapses every run of characters outside [a-z0-9] into one underscore.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// firstNumberPattern finds the first digit run in a subject line.
var firstNumberPattern = regexp.MustCompile(`(\d+)`)

// asciiFold strips combining marks left behind by NFD decomposition.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CleanText flattens text to a single trimmed line. Carriage returns are
// dropped and newlines become spaces so subjects and filenames arriving with
// folded headers stay comparable.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	replaced := strings.NewReplacer("\r", "", "\n", " ").Replace(text)
	return strings.TrimSpace(replaced)
}

// SanitizeForJSON rewrites characters that routinely break JSON payloads when
// record bodies are embedded into LLM prompts: backslashes become forward
// slashes and double quotes become single quotes.
func SanitizeForJSON(text string) string {
	if text == "" {
		return ""
	}
	return strings.NewReplacer(`\`, "/", `"`, "'").Replace(text)
}

// Slugify converts a filename into a lowercase ASCII slug, keeping the
// extension. "Théme Song (Final).MP3" becomes "theme_song_final.mp3".
func Slugify(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	if folded, _, err := transform.String(asciiFold, name); err == nil {
		name = folded
	}
	name = strings.ToLower(name)
	name = slugPattern.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	return name + strings.ToLower(ext)
}

// FirstNumber returns the first digit run found in text, or "" when none exists.
func FirstNumber(text string) string {
	match := firstNumberPattern.FindString(text)
	return match
}

package audio

import (
	"path/filepath"
	"strings"
)

// FormatOriginal disables transcoding; the file keeps its extension and the
// loudness filter re-encodes with the source codec's defaults.
const FormatOriginal = "original"

// Spec carries the per-run normalization parameters, resolved from workflow
// configuration with processor-option overrides.
type Spec struct {
	OutputFormat string
	Bitrate      string
	TargetLUFS   float64
}

// Format describes one supported output container.
type Format struct {
	Codec          string
	Extension      string
	DefaultBitrate string
}

var formats = map[string]Format{
	"mp3":  {Codec: "libmp3lame", Extension: ".mp3", DefaultBitrate: "320k"},
	"ogg":  {Codec: "libvorbis", Extension: ".ogg", DefaultBitrate: "192k"},
	"opus": {Codec: "libopus", Extension: ".opus", DefaultBitrate: "128k"},
	"m4a":  {Codec: "aac", Extension: ".m4a", DefaultBitrate: "256k"},
	"flac": {Codec: "flac", Extension: ".flac", DefaultBitrate: ""},
}

// LookupFormat resolves a configured output format name.
func LookupFormat(name string) (Format, bool) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// FinalName maps a saved filename to the name it will carry after
// normalization: the base name plus the output format's canonical extension.
// FormatOriginal and unknown formats leave the name unchanged.
func FinalName(filename, outputFormat string) string {
	f, ok := LookupFormat(outputFormat)
	if !ok {
		return filename
	}
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + f.Extension
}

package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bogem/id3v2"
	"github.com/tcolgate/mp3"
)

// Duration reads the playback length of a saved audio file by walking its
// frames. Only MP3 payloads are supported; other formats report an error and
// callers treat the duration as unknown.
func Duration(path string) (time.Duration, error) {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return 0, fmt.Errorf("duration probe: unsupported format %q", filepath.Ext(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("duration probe: %w", err)
	}
	defer file.Close()

	var (
		total   time.Duration
		frame   mp3.Frame
		skipped int
	)
	decoder := mp3.NewDecoder(file)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("duration probe: %w", err)
		}
		total += frame.Duration()
	}
	return total, nil
}

// TagTitle reads the ID3 title frame from an MP3 file. Returns an empty
// string when the file carries no usable tag.
func TagTitle(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title"}})
	if err != nil {
		return ""
	}
	defer tag.Close()
	return strings.TrimSpace(tag.Title())
}

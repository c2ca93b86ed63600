package metadata

import (
	"encoding/json"
	"os"

	"mailcrate/internal/fileutil"
	"mailcrate/internal/release"
)

// Track is one entry in a release's ordered track list. Duration is in
// seconds and stays zero until the backfill pass probes the audio file.
type Track struct {
	TrackNum    int    `json:"track_num"`
	Title       string `json:"title"`
	Credits     string `json:"credits,omitempty"`
	DateWritten string `json:"date_written,omitempty"`
	Lyrics      string `json:"lyrics,omitempty"`
	AudioFile   string `json:"audio_file"`
	TrackImage  string `json:"track_image,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// Metadata is the structured document derived from a raw release record.
type Metadata struct {
	ReleaseNumber json.Number `json:"release_number"`
	ReleaseImage  string      `json:"release_image,omitempty"`
	Tracks        []Track     `json:"tracks"`
}

// Exists reports whether a release already has a metadata document.
func Exists(dir string) bool {
	_, err := os.Stat(release.MetadataPath(dir))
	return err == nil
}

// Load reads the metadata document from a release folder.
func Load(dir string) (*Metadata, error) {
	data, err := os.ReadFile(release.MetadataPath(dir))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Save writes the metadata document as a whole-file replacement.
func Save(dir string, meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(release.MetadataPath(dir), data, 0o644)
}

package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"mailcrate/internal/audio"
	"mailcrate/internal/fileutil"
	"mailcrate/internal/logging"
	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
	"mailcrate/internal/workflow"
)

// TracksFilename is the cross-collection registry written under the archive
// root.
const TracksFilename = "tracks.json"

// RegistryTrack is one canonical track entry.
type RegistryTrack struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist,omitempty"`
	DateWritten     string `json:"date_written,omitempty"`
	AudioFile       string `json:"audio_file"`
	TrackImage      string `json:"track_image,omitempty"`
	Duration        int    `json:"duration,omitempty"`
	Lyrics          string `json:"lyrics,omitempty"`
	CollectionID    string `json:"collection_id"`
	FirstAppearance string `json:"first_appearance"`
}

// TrackRegistry aggregates every known track across all collections.
type TrackRegistry struct {
	Tracks map[string]RegistryTrack `json:"tracks"`
	Meta   registryMeta             `json:"metadata"`
}

type registryMeta struct {
	TotalTracks int      `json:"total_tracks"`
	Collections []string `json:"collections"`
	Generated   string   `json:"generated"`
}

// BuildTrackRegistry scans every workflow's releases and assembles the track
// registry. A colliding track id gets the release number appended so both
// entries survive. Tracks whose metadata carries no title fall back to the
// audio file's tag title.
func BuildTrackRegistry(workflows []*workflow.Workflow, archiveRoot string, logger *slog.Logger) (*TrackRegistry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := &TrackRegistry{Tracks: make(map[string]RegistryTrack)}

	for _, wf := range workflows {
		registry.Meta.Collections = append(registry.Meta.Collections, wf.Name)
		dirs, err := ReleaseDirs(wf, archiveRoot)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			meta, err := metadata.Load(dir)
			if err != nil {
				continue
			}
			releaseNum := meta.ReleaseNumber.String()
			for _, track := range meta.Tracks {
				if track.AudioFile == "" {
					continue
				}
				id := trackID(track.AudioFile, wf.Name)
				if _, taken := registry.Tracks[id]; taken {
					logger.Warn("duplicate track id, disambiguating",
						logging.String("id", id), logging.String("dir", dir))
					id = fmt.Sprintf("%s_r%s", id, releaseNum)
				}

				title := track.Title
				if title == "" {
					title = audio.TagTitle(filepath.Join(release.AudioDir(dir), track.AudioFile))
				}
				entry := RegistryTrack{
					ID:              id,
					Title:           title,
					Artist:          track.Credits,
					DateWritten:     track.DateWritten,
					AudioFile:       filepath.Join(filepath.Base(dir), release.AudioDirName, track.AudioFile),
					Duration:        track.Duration,
					Lyrics:          track.Lyrics,
					CollectionID:    wf.Name,
					FirstAppearance: fmt.Sprintf("%s %s", releaseType(wf), releaseNum),
				}
				if track.TrackImage != "" {
					entry.TrackImage = filepath.Join(filepath.Base(dir), release.ImagesDirName, track.TrackImage)
				}
				registry.Tracks[id] = entry
			}
		}
	}
	registry.Meta.TotalTracks = len(registry.Tracks)
	registry.Meta.Generated = time.Now().UTC().Format("2006-01-02")
	return registry, nil
}

// WriteTrackRegistry saves the registry under the archive root.
func WriteTrackRegistry(archiveRoot string, registry *TrackRegistry) error {
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(filepath.Join(archiveRoot, TracksFilename), data, 0o644)
}

// trackID derives a stable id from a slugified audio filename: the extension
// and any leading track number are dropped, the collection name prefixes the
// rest. "02_gravy.mp3" in sonic_twist becomes "sonic_twist_gravy".
func trackID(audioFile, collectionID string) string {
	base := strings.TrimSuffix(audioFile, filepath.Ext(audioFile))
	parts := strings.Split(base, "_")
	if len(parts) > 1 && isDigits(parts[0]) {
		parts = parts[1:]
	}
	return collectionID + "_" + strings.Join(parts, "_")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

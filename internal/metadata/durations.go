package metadata

import (
	"log/slog"
	"os"
	"path/filepath"

	"mailcrate/internal/audio"
	"mailcrate/internal/logging"
	"mailcrate/internal/release"
)

// BackfillDurations probes every track's audio file and writes the measured
// length back into metadata.json. Files are looked up in the audio
// subdirectory first, then the release root. Missing or unreadable files are
// logged and skipped; the pass never fails a release.
func BackfillDurations(dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	meta, err := Load(dir)
	if err != nil {
		return err
	}

	updated := false
	for i := range meta.Tracks {
		track := &meta.Tracks[i]
		if track.AudioFile == "" {
			continue
		}
		path := filepath.Join(release.AudioDir(dir), track.AudioFile)
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(dir, track.AudioFile)
		}
		if _, err := os.Stat(path); err != nil {
			logger.Warn("audio file missing, duration left unset",
				logging.String("dir", dir), logging.String("file", track.AudioFile))
			continue
		}

		length, err := audio.Duration(path)
		if err != nil {
			logger.Warn("could not read duration",
				logging.String("file", track.AudioFile), logging.Error(err))
			continue
		}
		seconds := int(length.Seconds())
		if track.Duration != seconds {
			track.Duration = seconds
			updated = true
		}
	}

	if !updated {
		return nil
	}
	return Save(dir, meta)
}

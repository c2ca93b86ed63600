package release

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mailcrate/internal/fileutil"
	"mailcrate/internal/logging"
)

// Filenames and subdirectories of a release folder.
const (
	RawFilename      = "raw.json"
	MetadataFilename = "metadata.json"
	AudioDirName     = "audio"
	ImagesDirName    = "images"
)

// RawPath returns the raw record path inside a release folder.
func RawPath(dir string) string { return filepath.Join(dir, RawFilename) }

// MetadataPath returns the structured-metadata path inside a release folder.
func MetadataPath(dir string) string { return filepath.Join(dir, MetadataFilename) }

// AudioDir returns the audio subdirectory of a release folder.
func AudioDir(dir string) string { return filepath.Join(dir, AudioDirName) }

// ImagesDir returns the images subdirectory of a release folder.
func ImagesDir(dir string) string { return filepath.Join(dir, ImagesDirName) }

// Exists reports whether a release folder already carries a raw record.
func Exists(dir string) bool {
	_, err := os.Stat(RawPath(dir))
	return err == nil
}

// Load reads the raw record from a release folder.
func Load(dir string) (*Record, error) {
	data, err := os.ReadFile(RawPath(dir))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save writes the raw record as a whole-file replacement. The document is
// marshaled fully in memory first so a failure can never leave a truncated
// record behind.
func Save(dir string, rec *Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(RawPath(dir), data, 0o644)
}

// NewestRecordDate scans every raw record under baseDir and returns the most
// recent email date, for use as a fetch lower bound on resumed runs. Records
// that cannot be read or parsed are skipped with a warning; the scan itself
// never fails.
func NewestRecordDate(baseDir string, logger *slog.Logger) time.Time {
	if logger == nil {
		logger = logging.NewNop()
	}
	var newest time.Time
	_ = filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != RawFilename {
			return nil
		}
		rec, err := Load(filepath.Dir(path))
		if err != nil {
			logger.Warn("skipping unreadable record during cursor scan",
				logging.String("path", path), logging.Error(err))
			return nil
		}
		if t := ParseDate(rec.Date); t.After(newest) {
			newest = t
		}
		return nil
	})
	return newest
}

package catalog

import (
	"encoding/json"
	"log/slog"
	"path/filepath"

	"mailcrate/internal/fileutil"
	"mailcrate/internal/logging"
	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
	"mailcrate/internal/workflow"
)

// ManifestFilename is written at the root of each collection directory.
const ManifestFilename = "manifest.json"

// ManifestRelease summarizes one release for collection listings.
type ManifestRelease struct {
	ReleaseNumber string `json:"release_number"`
	ReleaseType   string `json:"release_type"`
	ReleaseDate   string `json:"release_date,omitempty"`
	ReleaseImage  string `json:"release_image,omitempty"`
	TrackCount    int    `json:"track_count"`
	TotalDuration int    `json:"total_duration"`
}

// Manifest lists every release in a collection that has metadata.
type Manifest struct {
	CollectionID  string            `json:"collection_id"`
	ReleaseType   string            `json:"release_type"`
	TotalReleases int               `json:"total_releases"`
	Releases      []ManifestRelease `json:"releases"`
}

// BuildManifest scans a collection and assembles its manifest. Releases
// without a metadata document are skipped with a warning; the manifest is a
// view over finished releases, not a completeness report.
func BuildManifest(wf *workflow.Workflow, archiveRoot string, logger *slog.Logger) (*Manifest, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	dirs, err := ReleaseDirs(wf, archiveRoot)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		CollectionID: wf.Name,
		ReleaseType:  releaseType(wf),
		Releases:     []ManifestRelease{},
	}
	for _, dir := range dirs {
		meta, err := metadata.Load(dir)
		if err != nil {
			logger.Warn("release has no usable metadata, skipping",
				logging.String("dir", dir), logging.Error(err))
			continue
		}

		entry := ManifestRelease{
			ReleaseNumber: meta.ReleaseNumber.String(),
			ReleaseType:   manifest.ReleaseType,
			TrackCount:    len(meta.Tracks),
		}
		if meta.ReleaseImage != "" {
			entry.ReleaseImage = filepath.Join(filepath.Base(dir), meta.ReleaseImage)
		}
		for _, track := range meta.Tracks {
			entry.TotalDuration += track.Duration
		}
		if rec, err := release.Load(dir); err == nil {
			entry.ReleaseDate = rec.Date
		}
		manifest.Releases = append(manifest.Releases, entry)
	}
	manifest.TotalReleases = len(manifest.Releases)
	return manifest, nil
}

// WriteManifest saves the manifest at the collection root.
func WriteManifest(wf *workflow.Workflow, archiveRoot string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(filepath.Join(wf.BaseDir(archiveRoot), ManifestFilename), data, 0o644)
}

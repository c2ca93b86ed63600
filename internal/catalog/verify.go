package catalog

import (
	"os"
	"path/filepath"

	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
	"mailcrate/internal/workflow"
)

// VerifyReport lists the audio files a release's metadata references that are
// not actually on disk.
type VerifyReport struct {
	Folder      string
	TotalTracks int
	Missing     []string
}

// VerifyAudioFiles checks every metadata track of every release in a
// collection against the audio directory. Releases without metadata are not
// reported; they have nothing to verify.
func VerifyAudioFiles(wf *workflow.Workflow, archiveRoot string) ([]VerifyReport, error) {
	dirs, err := ReleaseDirs(wf, archiveRoot)
	if err != nil {
		return nil, err
	}

	var reports []VerifyReport
	for _, dir := range dirs {
		meta, err := metadata.Load(dir)
		if err != nil {
			continue
		}
		report := VerifyReport{Folder: filepath.Base(dir), TotalTracks: len(meta.Tracks)}
		for _, track := range meta.Tracks {
			if track.AudioFile == "" {
				continue
			}
			path := filepath.Join(release.AudioDir(dir), track.AudioFile)
			if _, err := os.Stat(path); err != nil {
				report.Missing = append(report.Missing, track.AudioFile)
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

package catalog

import (
	"os"
	"path/filepath"

	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
	"mailcrate/internal/workflow"
)

// ReleaseStatus reports a release folder's completeness: a raw record plus
// at least one audio file makes it complete.
type ReleaseStatus struct {
	Folder      string
	HasRecord   bool
	HasMetadata bool
	AudioCount  int
}

// Complete reports whether the release has everything a finished ingestion
// leaves behind.
func (s ReleaseStatus) Complete() bool {
	return s.HasRecord && s.AudioCount > 0
}

// CollectionStatus inspects every release folder under a workflow's
// collection directory, including folders that never got a record written.
func CollectionStatus(wf *workflow.Workflow, archiveRoot string) ([]ReleaseStatus, error) {
	base := wf.BaseDir(archiveRoot)
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var statuses []ReleaseStatus
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(base, entry.Name())
		statuses = append(statuses, ReleaseStatus{
			Folder:      entry.Name(),
			HasRecord:   release.Exists(dir),
			HasMetadata: metadata.Exists(dir),
			AudioCount:  countAudioFiles(dir),
		})
	}
	return statuses, nil
}

package catalog

import (
	"os"
	"path/filepath"
	"sort"

	"mailcrate/internal/release"
	"mailcrate/internal/workflow"
)

// ReleaseDirs lists every release folder (one containing a raw record) under
// a workflow's collection directory, sorted by name.
func ReleaseDirs(wf *workflow.Workflow, archiveRoot string) ([]string, error) {
	base := wf.BaseDir(archiveRoot)
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(base, entry.Name())
		if release.Exists(dir) {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// releaseType names releases for display, Issue/Volume style.
func releaseType(wf *workflow.Workflow) string {
	if wf.ReleaseIndicator != "" {
		return wf.ReleaseIndicator
	}
	return "Release"
}

func countAudioFiles(dir string) int {
	entries, err := os.ReadDir(release.AudioDir(dir))
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}
	return count
}

package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
	"mailcrate/internal/workflow"
)

func seedRelease(t *testing.T, base, folder string, meta *metadata.Metadata, audioFiles ...string) string {
	t.Helper()
	dir := filepath.Join(base, folder)
	rec := &release.Record{UID: []string{"1"}, Subject: []string{folder}, Date: "2025-06-01T10:00:00Z"}
	if err := release.Save(dir, rec); err != nil {
		t.Fatal(err)
	}
	if meta != nil {
		if err := metadata.Save(dir, meta); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range audioFiles {
		if err := os.MkdirAll(release.AudioDir(dir), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(release.AudioDir(dir), name), []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func twistWorkflow() *workflow.Workflow {
	return &workflow.Workflow{Name: "sonic_twist", CollectionType: workflow.BoundVolume, ReleaseIndicator: "Issue"}
}

func TestBuildManifest(t *testing.T) {
	root := t.TempDir()
	wf := twistWorkflow()
	base := wf.BaseDir(root)

	seedRelease(t, base, "Issue_1", &metadata.Metadata{
		ReleaseNumber: json.Number("1"),
		ReleaseImage:  "cover.png",
		Tracks: []metadata.Track{
			{TrackNum: 1, Title: "A", AudioFile: "01_a.mp3", Duration: 120},
			{TrackNum: 2, Title: "B", AudioFile: "02_b.mp3", Duration: 60},
		},
	}, "01_a.mp3", "02_b.mp3")
	// A release without metadata is skipped.
	seedRelease(t, base, "Issue_2", nil)

	manifest, err := BuildManifest(wf, root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if manifest.TotalReleases != 1 || len(manifest.Releases) != 1 {
		t.Fatalf("manifest = %+v", manifest)
	}
	entry := manifest.Releases[0]
	if entry.ReleaseNumber != "1" || entry.TrackCount != 2 || entry.TotalDuration != 180 {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.ReleaseDate != "2025-06-01T10:00:00Z" {
		t.Fatalf("release date = %q", entry.ReleaseDate)
	}

	if err := WriteManifest(wf, root, manifest); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(base, ManifestFilename)); err != nil {
		t.Fatal(err)
	}
}

func TestBuildTrackRegistry(t *testing.T) {
	root := t.TempDir()
	wf := twistWorkflow()
	base := wf.BaseDir(root)

	seedRelease(t, base, "Issue_1", &metadata.Metadata{
		ReleaseNumber: json.Number("1"),
		Tracks:        []metadata.Track{{TrackNum: 1, Title: "Gravy", AudioFile: "02_gravy.mp3", Duration: 79}},
	}, "02_gravy.mp3")
	// Same id in a later release collides and gets the release suffix.
	seedRelease(t, base, "Issue_2", &metadata.Metadata{
		ReleaseNumber: json.Number("2"),
		Tracks:        []metadata.Track{{TrackNum: 1, Title: "Gravy (Live)", AudioFile: "01_gravy.mp3"}},
	}, "01_gravy.mp3")

	registry, err := BuildTrackRegistry([]*workflow.Workflow{wf}, root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if registry.Meta.TotalTracks != 2 {
		t.Fatalf("registry = %+v", registry)
	}
	first, ok := registry.Tracks["sonic_twist_gravy"]
	if !ok {
		t.Fatalf("missing base id, tracks = %v", registry.Tracks)
	}
	if first.FirstAppearance != "Issue 1" || first.Duration != 79 {
		t.Fatalf("first = %+v", first)
	}
	if _, ok := registry.Tracks["sonic_twist_gravy_r2"]; !ok {
		t.Fatalf("missing disambiguated id, tracks = %v", registry.Tracks)
	}
}

func TestTrackID(t *testing.T) {
	cases := []struct{ file, want string }{
		{"02_gravy_1_19.mp3", "sonic_twist_gravy_1_19"},
		{"opener.mp3", "sonic_twist_opener"},
		{"7th_heaven.mp3", "sonic_twist_7th_heaven"},
	}
	for _, tc := range cases {
		if got := trackID(tc.file, "sonic_twist"); got != tc.want {
			t.Errorf("trackID(%q) = %q, want %q", tc.file, got, tc.want)
		}
	}
}

func TestCollectionStatus(t *testing.T) {
	root := t.TempDir()
	wf := twistWorkflow()
	base := wf.BaseDir(root)

	seedRelease(t, base, "Issue_1", nil, "01_a.mp3")
	// A folder with a record but no audio is incomplete.
	seedRelease(t, base, "Issue_2", nil)

	statuses, err := CollectionStatus(wf, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 {
		t.Fatalf("statuses = %+v", statuses)
	}
	byFolder := map[string]ReleaseStatus{}
	for _, s := range statuses {
		byFolder[s.Folder] = s
	}
	if !byFolder["Issue_1"].Complete() {
		t.Fatalf("Issue_1 should be complete: %+v", byFolder["Issue_1"])
	}
	if byFolder["Issue_2"].Complete() {
		t.Fatalf("Issue_2 should be incomplete: %+v", byFolder["Issue_2"])
	}
}

func TestVerifyAudioFiles(t *testing.T) {
	root := t.TempDir()
	wf := twistWorkflow()
	base := wf.BaseDir(root)

	seedRelease(t, base, "Issue_1", &metadata.Metadata{
		ReleaseNumber: json.Number("1"),
		Tracks: []metadata.Track{
			{TrackNum: 1, Title: "Here", AudioFile: "01_here.mp3"},
			{TrackNum: 2, Title: "Gone", AudioFile: "02_gone.mp3"},
		},
	}, "01_here.mp3")

	reports, err := VerifyAudioFiles(wf, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %+v", reports)
	}
	if len(reports[0].Missing) != 1 || reports[0].Missing[0] != "02_gone.mp3" {
		t.Fatalf("missing = %v", reports[0].Missing)
	}
}

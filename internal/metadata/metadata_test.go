package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mailcrate/internal/handler"
	"mailcrate/internal/release"
	"mailcrate/internal/services"
)

type fakeCompleter struct {
	prompt  string
	content string
	err     error
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _, userPrompt string) (string, error) {
	f.prompt = userPrompt
	return f.content, f.err
}

func writeRecord(t *testing.T, dir string) {
	t.Helper()
	rec := &release.Record{
		UID:     []string{"100"},
		Subject: []string{"Issue 42"},
		Body:    "Track one is called Opener.",
		Attachments: []handler.SavedFile{
			{Original: "01 Opener.mp3", Slugified: "01_opener.mp3", Type: "audio"},
		},
	}
	if err := release.Save(dir, rec); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateWritesMetadata(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Issue_42")
	writeRecord(t, dir)

	client := &fakeCompleter{content: `{
		"release_number": 42,
		"release_image": "cover.png",
		"tracks": [{"track_num": 1, "title": "Opener", "audio_file": "01_opener.mp3"}]
	}`}
	gen := NewGenerator(client, nil)

	if err := gen.Generate(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	meta, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ReleaseNumber.String() != "42" || len(meta.Tracks) != 1 {
		t.Fatalf("meta = %+v", meta)
	}
	if meta.Tracks[0].AudioFile != "01_opener.mp3" {
		t.Fatalf("track = %+v", meta.Tracks[0])
	}

	// The prompt must carry the subject, the slugified attachment names and
	// the body so the model can order tracks correctly.
	for _, want := range []string{"Issue 42", "01_opener.mp3", "Track one is called Opener."} {
		if !strings.Contains(client.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateWrapsFailures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Issue_7")
	writeRecord(t, dir)

	client := &fakeCompleter{err: services.Wrap(services.ErrRateLimited, "llm", "complete", "gave up", nil)}
	gen := NewGenerator(client, nil)

	err := gen.Generate(context.Background(), dir)
	if err == nil || !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
	if Exists(dir) {
		t.Fatal("no metadata must be written on failure")
	}
}

func TestGenerateToleratesFencedPayload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Issue_8")
	writeRecord(t, dir)

	client := &fakeCompleter{content: "```json\n{\"release_number\": 8, \"tracks\": []}\n```"}
	gen := NewGenerator(client, nil)
	if err := gen.Generate(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	meta, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ReleaseNumber.String() != "8" {
		t.Fatalf("release_number = %v", meta.ReleaseNumber)
	}
}

func TestBackfillDurationsSkipsMissingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Issue_9")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := &Metadata{Tracks: []Track{
		{TrackNum: 1, Title: "Gone", AudioFile: "missing.mp3"},
		{TrackNum: 2, Title: "No File"},
	}}
	if err := Save(dir, meta); err != nil {
		t.Fatal(err)
	}

	if err := BackfillDurations(dir, nil); err != nil {
		t.Fatal(err)
	}
	back, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, track := range back.Tracks {
		if track.Duration != 0 {
			t.Fatalf("duration must stay unset for missing files: %+v", track)
		}
	}
}

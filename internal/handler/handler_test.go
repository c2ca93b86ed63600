package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"mailcrate/internal/audio"
	"mailcrate/internal/mail"
	"mailcrate/internal/workflow"
)

type fakeNormalizer struct {
	calls []audio.Spec
	paths []string
	ok    bool
	err   error
}

func (f *fakeNormalizer) Normalize(_ context.Context, path string, spec audio.Spec) (bool, error) {
	f.calls = append(f.calls, spec)
	f.paths = append(f.paths, path)
	return f.ok, f.err
}

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testWorkflow() *workflow.Workflow {
	return &workflow.Workflow{
		Name:            "sonic_twist",
		CollectionType:  workflow.BoundVolume,
		NormalizeAudio:  true,
		AudioTargetLUFS: -16,
		AttachmentProcessors: []workflow.AttachmentProcessor{
			{Name: "zip_extractor", FilePatterns: []string{"*.zip"}, Handler: "archive_extractor"},
			{Name: "audio", FilePatterns: []string{"*.mp3", "*.wav"}, Handler: "audio_normalizer",
				Options: workflow.Options{"output_format": "mp3"}},
			{Name: "catchall", FilePatterns: []string{"*"}, Handler: "verbatim_saver"},
		},
	}
}

func TestDispatchFirstMatchWins(t *testing.T) {
	norm := &fakeNormalizer{ok: true}
	reg := NewRegistry(norm, nil)
	dir := t.TempDir()

	// The catch-all pattern also matches, but the zip processor is declared
	// first and must win.
	payload := buildZip(t, map[string][]byte{"01 Track.mp3": []byte("audio")})
	saved, err := reg.Dispatch(context.Background(), mail.Attachment{Filename: "Issue 42.zip", Data: payload},
		dir, NewSideChannel(), testWorkflow())
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0].Original != "01 Track.mp3" {
		t.Fatalf("saved = %+v", saved)
	}
	if len(norm.calls) != 1 {
		t.Fatalf("extracted audio should have been re-dispatched, calls = %d", len(norm.calls))
	}
}

func TestDispatchUnmatchedSavesVerbatimByType(t *testing.T) {
	wf := &workflow.Workflow{Name: "bare"}
	reg := NewRegistry(nil, nil)
	dir := t.TempDir()

	if _, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "Cover Art.PNG", Data: []byte("img")}, dir, NewSideChannel(), wf); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "images", "cover_art.png")); err != nil {
		t.Fatalf("image not in images dir: %v", err)
	}

	if _, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "Demo Song.mp3", Data: []byte("aud")}, dir, NewSideChannel(), wf); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "demo_song.mp3")); err != nil {
		t.Fatalf("audio not in audio dir: %v", err)
	}
}

func TestArchiveExtractorSkipsJunkEntries(t *testing.T) {
	payload := buildZip(t, map[string][]byte{
		"01 Track.mp3":            []byte("audio"),
		".DS_Store":               []byte("junk"),
		"__MACOSX/._01 Track.mp3": []byte("junk"),
		"__system_info":           []byte("junk"),
		"notes/.hidden":           []byte("junk"),
	})
	wf := testWorkflow()
	wf.NormalizeAudio = false
	reg := NewRegistry(nil, nil)
	dir := t.TempDir()

	saved, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "issue.zip", Data: payload}, dir, NewSideChannel(), wf)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected only the track to survive, got %+v", saved)
	}
	if saved[0].Slugified != "01_track.mp3" {
		t.Fatalf("slugified = %q", saved[0].Slugified)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "01_track.mp3")); err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
}

func TestArchiveExtractorReflectsTranscodeRename(t *testing.T) {
	payload := buildZip(t, map[string][]byte{"Demo Take.wav": []byte("audio")})
	norm := &fakeNormalizer{ok: true}
	reg := NewRegistry(norm, nil)
	dir := t.TempDir()

	saved, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "issue.zip", Data: payload}, dir, NewSideChannel(), testWorkflow())
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved = %+v", saved)
	}
	// Normalization converted wav to mp3; the record must carry the new name.
	if saved[0].Slugified != "demo_take.mp3" {
		t.Fatalf("slugified = %q, want post-transcode name", saved[0].Slugified)
	}
	if saved[0].Original != "Demo Take.wav" {
		t.Fatalf("original = %q", saved[0].Original)
	}
}

func TestArchiveExtractorDoesNotRecurseIntoNestedArchives(t *testing.T) {
	inner := buildZip(t, map[string][]byte{"track.mp3": []byte("audio")})
	outer := buildZip(t, map[string][]byte{"bonus.zip": inner})
	reg := NewRegistry(nil, nil)
	dir := t.TempDir()
	wf := testWorkflow()
	wf.NormalizeAudio = false

	saved, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "issue.zip", Data: outer}, dir, NewSideChannel(), wf)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0].Slugified != "bonus.zip" {
		t.Fatalf("nested archive must stay a file, saved = %+v", saved)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "bonus.zip")); err != nil {
		t.Fatalf("nested archive not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "track.mp3")); !os.IsNotExist(err) {
		t.Fatal("nested archive contents must not be extracted")
	}
}

func TestArchiveExtractorHonorsExtractTo(t *testing.T) {
	payload := buildZip(t, map[string][]byte{"track.mp3": []byte("audio")})
	wf := testWorkflow()
	wf.NormalizeAudio = false
	wf.AttachmentProcessors[0].Options = workflow.Options{"extract_to": "bonus"}
	reg := NewRegistry(nil, nil)
	dir := t.TempDir()

	if _, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "issue.zip", Data: payload}, dir, NewSideChannel(), wf); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "bonus", "track.mp3")); err != nil {
		t.Fatalf("extract_to subdirectory not honored: %v", err)
	}
}

func TestAudioNormalizerFailureKeepsOriginal(t *testing.T) {
	norm := &fakeNormalizer{ok: false, err: os.ErrPermission}
	reg := NewRegistry(norm, nil)
	dir := t.TempDir()
	wf := testWorkflow()

	saved, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "Demo Take.wav", Data: []byte("audio")}, dir, NewSideChannel(), wf)
	if err != nil {
		t.Fatal(err)
	}
	if saved[0].Slugified != "demo_take.wav" {
		t.Fatalf("failed normalization must keep the original name, got %q", saved[0].Slugified)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "demo_take.wav")); err != nil {
		t.Fatalf("saved file missing after failed normalization: %v", err)
	}
}

func TestAudioNormalizerPassesResolvedSpec(t *testing.T) {
	norm := &fakeNormalizer{ok: true}
	reg := NewRegistry(norm, nil)
	dir := t.TempDir()
	wf := testWorkflow()
	wf.AudioBitrate = "192k"

	if _, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "song.mp3", Data: []byte("audio")}, dir, NewSideChannel(), wf); err != nil {
		t.Fatal(err)
	}
	if len(norm.calls) != 1 {
		t.Fatalf("calls = %d", len(norm.calls))
	}
	spec := norm.calls[0]
	if spec.OutputFormat != "mp3" || spec.TargetLUFS != -16 || spec.Bitrate != "192k" {
		t.Fatalf("spec = %+v", spec)
	}
}

func TestDocumentExtractionFailureKeepsFile(t *testing.T) {
	reg := NewRegistry(nil, nil)
	dir := t.TempDir()
	wf := &workflow.Workflow{
		Name:          "docs",
		ExtractLyrics: true,
		AttachmentProcessors: []workflow.AttachmentProcessor{
			{Name: "lyrics", FilePatterns: []string{"*.docx"}, Handler: "document_text_extractor",
				Options: workflow.Options{"field_name": "lyrics"}},
		},
	}
	acc := NewSideChannel()

	saved, err := reg.Dispatch(context.Background(),
		mail.Attachment{Filename: "Lyrics.docx", Data: []byte("not a docx")}, dir, acc, wf)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0].Type != "document" {
		t.Fatalf("saved = %+v", saved)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio", "lyrics.docx")); err != nil {
		t.Fatalf("document must be saved even when extraction fails: %v", err)
	}
	if len(acc.Fields()) != 0 {
		t.Fatalf("side channel should stay empty on failure, got %+v", acc.Fields())
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry(nil, nil)
	if _, err := reg.Get("zip_unpacker"); err == nil {
		t.Fatal("unknown handler must fail")
	}
	names := reg.Names()
	want := []string{"archive_extractor", "audio_normalizer", "document_text_extractor", "verbatim_saver"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

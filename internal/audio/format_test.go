package audio

import "testing"

func TestLookupFormat(t *testing.T) {
	f, ok := LookupFormat("MP3")
	if !ok {
		t.Fatal("mp3 should resolve")
	}
	if f.Codec != "libmp3lame" || f.Extension != ".mp3" {
		t.Fatalf("unexpected format: %+v", f)
	}
	if _, ok := LookupFormat(FormatOriginal); ok {
		t.Fatal("original must not resolve to a transcode target")
	}
	if _, ok := LookupFormat("wav"); ok {
		t.Fatal("unsupported formats must not resolve")
	}
}

func TestFinalName(t *testing.T) {
	cases := []struct {
		filename string
		format   string
		want     string
	}{
		{"01_track.wav", "mp3", "01_track.mp3"},
		{"01_track.mp3", "mp3", "01_track.mp3"},
		{"01_track.wav", "ogg", "01_track.ogg"},
		{"01_track.wav", FormatOriginal, "01_track.wav"},
		{"01_track.wav", "", "01_track.wav"},
		{"noext", "opus", "noext.opus"},
	}
	for _, tc := range cases {
		if got := FinalName(tc.filename, tc.format); got != tc.want {
			t.Errorf("FinalName(%q, %q) = %q, want %q", tc.filename, tc.format, got, tc.want)
		}
	}
}

func TestTempOutputPathStaysInDir(t *testing.T) {
	got := tempOutputPath("/archive/issue_42/audio/01_track.mp3")
	want := "/archive/issue_42/audio/.norm-01_track.mp3"
	if got != want {
		t.Fatalf("tempOutputPath = %q, want %q", got, want)
	}
}

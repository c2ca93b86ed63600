package textutil

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"folded header", "Sonic Twist\r\n Issue 42", "Sonic Twist  Issue 42"},
		{"surrounding space", "  hello  ", "hello"},
		{"carriage returns dropped", "a\rb", "ab"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanText(tc.input); got != tc.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeForJSON(t *testing.T) {
	got := SanitizeForJSON(`path\to "file"`)
	want := `path/to 'file'`
	if got != want {
		t.Fatalf("SanitizeForJSON = %q, want %q", got, want)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"01 Track Name.MP3", "01_track_name.mp3"},
		{"Théme Song (Final).mp3", "theme_song_final.mp3"},
		{"__weird--name__.docx", "weird_name.docx"},
		{"noextension", "noextension"},
		{"Cover Art.JPEG", "cover_art.jpeg"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.input); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFirstNumber(t *testing.T) {
	if got := FirstNumber("Sonic Twist Issue 42 is here"); got != "42" {
		t.Fatalf("FirstNumber = %q, want 42", got)
	}
	if got := FirstNumber("no digits at all"); got != "" {
		t.Fatalf("FirstNumber = %q, want empty", got)
	}
}

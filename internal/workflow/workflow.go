package workflow

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"mailcrate/internal/mail"
	"mailcrate/internal/textutil"
)

// CollectionType selects the folder-naming strategy for a workflow.
type CollectionType string

const (
	// BoundVolume names release folders from a number extracted from the
	// email subject (Issue_42, Volume_7).
	BoundVolume CollectionType = "bound_volume"
	// Playlist appends every message into one fixed, growing release.
	Playlist CollectionType = "playlist"
	// NamedRelease requires an externally supplied title per run.
	NamedRelease CollectionType = "named_release"
)

// ReleaseNumberUnknown is the sentinel returned when no release number can be
// extracted from a subject. It is deliberately non-numeric so it can never be
// mistaken for data.
const ReleaseNumberUnknown = "unknown"

// Options carries handler-specific settings from the workflows file.
type Options map[string]any

// String returns the option value for key, or fallback when absent or not a
// string.
func (o Options) String(key, fallback string) string {
	if v, ok := o[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Float returns the option value for key, tolerating TOML integer values, or
// fallback when absent.
func (o Options) Float(key string, fallback float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// AttachmentProcessor is one entry in a workflow's ordered dispatch chain.
type AttachmentProcessor struct {
	Name         string   `toml:"name"`
	FilePatterns []string `toml:"file_patterns"`
	Handler      string   `toml:"handler"`
	Options      Options  `toml:"options"`
}

// Workflow is one collection's ingestion policy. Immutable after load except
// for the AfterDate resume cursor.
type Workflow struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	// Dir is the collection directory under the archive root. Defaults to Name.
	Dir string `toml:"dir"`

	CollectionType CollectionType `toml:"collection_type"`

	// Mail filter.
	Sender            string `toml:"sender"`
	SubjectFilter     string `toml:"subject_filter"`
	Folder            string `toml:"folder"`
	Before            string `toml:"before"` // YYYY-MM-DD
	After             string `toml:"after"`  // YYYY-MM-DD
	RequireAttachment bool   `toml:"require_attachment"`

	// Folder naming.
	FolderPattern        string `toml:"folder_pattern"`
	ReleaseIndicator     string `toml:"release_indicator"`
	ReleaseNumberPattern string `toml:"release_number_pattern"`
	SingleReleaseName    string `toml:"single_release_name"`

	AttachmentProcessors []AttachmentProcessor `toml:"attachment_processors"`

	// Behavior flags.
	MergeFragments    bool    `toml:"merge_fragments"`
	ExtractLyrics     bool    `toml:"extract_lyrics_from_docx"`
	GenerateMetadata  bool    `toml:"generate_metadata"`
	NormalizeAudio    bool    `toml:"normalize_audio"`
	AudioOutputFormat string  `toml:"audio_output_format"`
	AudioBitrate      string  `toml:"audio_bitrate"`
	AudioTargetLUFS   float64 `toml:"audio_target_lufs"`

	RegistryFilename string `toml:"registry_filename"`

	// AfterDate is the runtime resume cursor. Set by the engine from the most
	// recent archived record when the workflow has no explicit lower bound;
	// never written back to the workflows file.
	AfterDate time.Time `toml:"-"`

	releaseNumberRe *regexp.Regexp
	beforeDate      time.Time
	afterDate       time.Time
}

// BaseDir returns the collection directory under the archive root.
func (w *Workflow) BaseDir(archiveRoot string) string {
	dir := w.Dir
	if dir == "" {
		dir = w.Name
	}
	return filepath.Join(archiveRoot, dir)
}

// ResolveFolderName maps a release identifier to the release folder name
// according to the collection type. For bound volumes the identifier is the
// extracted release number; for named releases it is the supplied title.
func (w *Workflow) ResolveFolderName(release string) string {
	switch w.CollectionType {
	case Playlist:
		return w.SingleReleaseName
	case NamedRelease:
		return textutil.Slugify(release)
	default:
		pattern := w.FolderPattern
		if pattern == "" {
			pattern = "Issue_{number}"
		}
		return strings.ReplaceAll(pattern, "{number}", release)
	}
}

// ExtractReleaseNumber pulls a release number from a cleaned subject line.
// The configured pattern is tried first, then the first digit run in the
// subject. A pattern capture that is not purely numeric fails extraction;
// folder names are only ever built from digits. Returns
// (ReleaseNumberUnknown, false) when nothing usable matches; callers must
// check the flag before using the value.
func (w *Workflow) ExtractReleaseNumber(subject string) (string, bool) {
	if w.releaseNumberRe != nil {
		if m := w.releaseNumberRe.FindStringSubmatch(subject); len(m) > 1 && m[1] != "" {
			if !allDigits(m[1]) {
				return ReleaseNumberUnknown, false
			}
			return m[1], true
		}
	}
	if n := textutil.FirstNumber(subject); n != "" {
		return n, true
	}
	return ReleaseNumberUnknown, false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// SourceQuery builds the mail-source criteria for this workflow, honoring the
// runtime resume cursor over the static lower bound.
func (w *Workflow) SourceQuery() mail.Criteria {
	crit := mail.Criteria{
		Sender:          w.Sender,
		SubjectContains: w.SubjectFilter,
		Folder:          w.Folder,
		HasAttachment:   w.RequireAttachment,
		Before:          w.beforeDate,
		After:           w.afterDate,
	}
	if !w.AfterDate.IsZero() {
		crit.After = w.AfterDate
	}
	return crit
}

// HasExplicitAfter reports whether the workflows file pinned a lower date
// bound, which disables resume-cursor discovery.
func (w *Workflow) HasExplicitAfter() bool {
	return !w.afterDate.IsZero()
}

// ReleaseLabel builds the human-readable label logged for a release.
func (w *Workflow) ReleaseLabel(release string) string {
	if w.CollectionType == BoundVolume && w.ReleaseIndicator != "" {
		return w.ReleaseIndicator + " " + release
	}
	return release
}

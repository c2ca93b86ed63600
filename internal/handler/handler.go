package handler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"mailcrate/internal/audio"
	"mailcrate/internal/logging"
	"mailcrate/internal/mail"
	"mailcrate/internal/services"
	"mailcrate/internal/textutil"
	"mailcrate/internal/workflow"
)

// SavedFile records where one attachment (or archive entry) landed on disk.
// Slugified is the filename actually written, after any post-processing
// rename such as a transcode extension change.
type SavedFile struct {
	Original  string `json:"original"`
	Slugified string `json:"slugified"`
	Type      string `json:"type,omitempty"`
}

// SideChannel accumulates text pulled out of attachments during a dispatch
// pass, keyed by the field name it should land under in the release record.
type SideChannel struct {
	fields map[string]string
}

// NewSideChannel returns an empty accumulator.
func NewSideChannel() *SideChannel {
	return &SideChannel{fields: make(map[string]string)}
}

// Set stores text under field, replacing any earlier value.
func (s *SideChannel) Set(field, text string) {
	s.fields[field] = text
}

// Fields returns the accumulated entries.
func (s *SideChannel) Fields() map[string]string {
	return s.fields
}

// Request carries everything a handler needs for one attachment.
type Request struct {
	Attachment mail.Attachment
	// TargetDir is where the handler writes its files.
	TargetDir string
	Options   workflow.Options
	Workflow  *workflow.Workflow
	// Disallowed lists handler names that must not run on files produced by
	// this request. The archive extractor adds itself here before
	// re-dispatching extracted entries.
	Disallowed map[string]struct{}
}

// Handler processes one attachment and reports the files it saved.
type Handler interface {
	Process(ctx context.Context, req Request, acc *SideChannel) ([]SavedFile, error)
}

// Registry maps configured handler names to implementations.
type Registry struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry builds the registry with the built-in handlers. The normalizer
// backs audio_normalizer; pass nil to save audio without normalization.
func NewRegistry(normalizer audio.Normalizer, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Registry{logger: logger}
	r.handlers = map[string]Handler{
		"archive_extractor":       &archiveExtractor{name: "archive_extractor", registry: r},
		"audio_normalizer":        &audioNormalizer{normalizer: normalizer, logger: logger},
		"document_text_extractor": &documentTextExtractor{logger: logger},
		"verbatim_saver":          &verbatimSaver{},
	}
	return r
}

// Get resolves a handler by its configured name.
func (r *Registry) Get(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "handler", "get",
			fmt.Sprintf("unknown handler %q (available: %s)", name, strings.Join(r.Names(), ", ")), nil)
	}
	return h, nil
}

// Names returns the registered handler names, sorted. Workflow loading uses
// this list to reject unknown handler references before any fetch happens.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch routes one attachment through the workflow's processor chain. The
// first processor whose patterns match the cleaned, lowercased filename wins;
// unmatched attachments are saved verbatim into a directory inferred from the
// extension (images/ for image types, audio/ for everything else).
func (r *Registry) Dispatch(ctx context.Context, att mail.Attachment, releaseDir string, acc *SideChannel, wf *workflow.Workflow) ([]SavedFile, error) {
	origName := textutil.CleanText(att.Filename)
	targetDir := filepath.Join(releaseDir, "audio")
	if isImage(origName) {
		targetDir = filepath.Join(releaseDir, "images")
	}

	for _, proc := range wf.AttachmentProcessors {
		if !matchesAny(origName, proc.FilePatterns) {
			continue
		}
		h, err := r.Get(proc.Handler)
		if err != nil {
			return nil, err
		}
		return h.Process(ctx, Request{
			Attachment: att,
			TargetDir:  targetDir,
			Options:    proc.Options,
			Workflow:   wf,
		}, acc)
	}

	saved, err := saveVerbatim(att, targetDir, "")
	if err != nil {
		return nil, err
	}
	return []SavedFile{saved}, nil
}

// matchesAny reports whether the lowercased filename matches any of the glob
// patterns. Patterns are validated at workflow-load time; a malformed one
// here simply never matches.
func matchesAny(filename string, patterns []string) bool {
	lower := strings.ToLower(filename)
	for _, pattern := range patterns {
		if ok, err := path.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {}, ".svg": {},
}

func isImage(filename string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// saveVerbatim writes the attachment payload to targetDir under a slugified
// name and returns its descriptor.
func saveVerbatim(att mail.Attachment, targetDir, fileType string) (SavedFile, error) {
	origName := textutil.CleanText(att.Filename)
	slugged := textutil.Slugify(origName)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return SavedFile{}, services.Wrap(services.ErrAttachment, "handler", "save", origName, err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, slugged), att.Data, 0o644); err != nil {
		return SavedFile{}, services.Wrap(services.ErrAttachment, "handler", "save", origName, err)
	}
	return SavedFile{Original: origName, Slugified: slugged, Type: fileType}, nil
}

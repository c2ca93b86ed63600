package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mailcrate/internal/logging"
	"mailcrate/internal/mail"
	"mailcrate/internal/services"
	"mailcrate/internal/textutil"
)

// archiveExtractor unpacks a zip payload in memory and pushes each retained
// entry back through the workflow's processor chain. Its own handler name is
// disallowed during re-dispatch so a zip inside a zip cannot recurse.
type archiveExtractor struct {
	name     string
	registry *Registry
}

func (a *archiveExtractor) Process(ctx context.Context, req Request, acc *SideChannel) ([]SavedFile, error) {
	origName := textutil.CleanText(req.Attachment.Filename)
	fail := func(msg string, err error) error {
		return services.Wrap(services.ErrAttachment, "handler", "extract", msg, err)
	}

	reader, err := zip.NewReader(bytes.NewReader(req.Attachment.Data), int64(len(req.Attachment.Data)))
	if err != nil {
		return nil, fail(origName, err)
	}

	extractDir := filepath.Join(req.TargetDir, req.Options.String("extract_to", ""))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, fail(origName, err)
	}

	disallowed := map[string]struct{}{a.name: {}}
	for name := range req.Disallowed {
		disallowed[name] = struct{}{}
	}

	var saved []SavedFile
	for _, entry := range reader.File {
		base := filepath.Base(entry.Name)
		// Skip directory markers and system junk (__MACOSX, .DS_Store).
		if base == "" || base == "." || base == "/" ||
			strings.HasPrefix(base, ".") || strings.HasPrefix(base, "__") || entry.FileInfo().IsDir() {
			continue
		}

		data, err := readZipEntry(entry)
		if err != nil {
			return saved, fail(origName+": "+base, err)
		}
		slugged := textutil.Slugify(base)
		if err := os.WriteFile(filepath.Join(extractDir, slugged), data, 0o644); err != nil {
			return saved, fail(origName+": "+slugged, err)
		}

		file := SavedFile{Original: base, Slugified: slugged}
		a.redispatch(ctx, &file, data, extractDir, acc, req, disallowed)
		saved = append(saved, file)
	}
	return saved, nil
}

// redispatch runs the first matching non-disallowed processor on an extracted
// file. A rename by the inner handler (a transcode changing the extension)
// replaces the descriptor's filename so the record points at what is actually
// on disk. Inner failures are logged and leave the extracted file as saved.
func (a *archiveExtractor) redispatch(ctx context.Context, file *SavedFile, data []byte, extractDir string, acc *SideChannel, req Request, disallowed map[string]struct{}) {
	for _, proc := range req.Workflow.AttachmentProcessors {
		if _, skip := disallowed[proc.Handler]; skip {
			continue
		}
		if !matchesAny(file.Slugified, proc.FilePatterns) {
			continue
		}
		h, err := a.registry.Get(proc.Handler)
		if err != nil {
			a.registry.logger.Warn("skipping extracted file processor",
				logging.String(logging.FieldAttachment, file.Slugified), logging.Error(err))
			return
		}
		results, err := h.Process(ctx, Request{
			Attachment: mail.Attachment{Filename: file.Slugified, Data: data},
			TargetDir:  extractDir,
			Options:    proc.Options,
			Workflow:   req.Workflow,
			Disallowed: disallowed,
		}, acc)
		if err != nil {
			a.registry.logger.Warn("processing extracted file failed",
				logging.String(logging.FieldAttachment, file.Slugified), logging.Error(err))
			return
		}
		if len(results) > 0 {
			if results[0].Slugified != "" {
				file.Slugified = results[0].Slugified
			}
			file.Type = results[0].Type
		}
		return
	}
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

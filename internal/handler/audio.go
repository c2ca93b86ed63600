package handler

import (
	"context"
	"log/slog"
	"path/filepath"

	"mailcrate/internal/audio"
	"mailcrate/internal/logging"
)

// audioNormalizer saves the attachment and, when the workflow enables it,
// hands the file to the normalization service. Failed normalization keeps
// the saved file untouched under its original name.
type audioNormalizer struct {
	normalizer audio.Normalizer
	logger     *slog.Logger
}

func (h *audioNormalizer) Process(ctx context.Context, req Request, acc *SideChannel) ([]SavedFile, error) {
	saved, err := saveVerbatim(req.Attachment, req.TargetDir, "audio")
	if err != nil {
		return nil, err
	}
	wf := req.Workflow
	if !wf.NormalizeAudio || h.normalizer == nil {
		return []SavedFile{saved}, nil
	}

	spec := audio.Spec{
		OutputFormat: req.Options.String("output_format", wf.AudioOutputFormat),
		TargetLUFS:   req.Options.Float("target_lufs", wf.AudioTargetLUFS),
		Bitrate:      req.Options.String("bitrate", wf.AudioBitrate),
	}
	path := filepath.Join(req.TargetDir, saved.Slugified)
	changed, err := h.normalizer.Normalize(ctx, path, spec)
	if err != nil {
		h.logger.Warn("audio normalization failed, keeping original",
			logging.String(logging.FieldAttachment, saved.Slugified), logging.Error(err))
		return []SavedFile{saved}, nil
	}
	if changed {
		saved.Slugified = audio.FinalName(saved.Slugified, spec.OutputFormat)
	}
	return []SavedFile{saved}, nil
}

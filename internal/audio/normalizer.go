package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mailcrate/internal/fileutil"
	"mailcrate/internal/logging"
	"mailcrate/internal/services"
)

var commandContext = exec.CommandContext

// Normalizer applies loudness normalization to a saved audio file in place.
// Implementations must leave the source untouched when they fail; the boolean
// reports whether the file was actually rewritten.
type Normalizer interface {
	Normalize(ctx context.Context, path string, spec Spec) (bool, error)
}

// Option configures the ffmpeg normalizer.
type Option func(*FFmpeg)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if binary != "" {
			f.binary = binary
		}
	}
}

// FFmpeg normalizes loudness with a two-pass EBU R128 loudnorm run: a
// measurement pass over the source, then an encode pass that feeds the
// measured values back into the filter.
type FFmpeg struct {
	binary string
	logger *slog.Logger
}

// NewFFmpeg constructs an ffmpeg-backed normalizer.
func NewFFmpeg(logger *slog.Logger, opts ...Option) *FFmpeg {
	if logger == nil {
		logger = logging.NewNop()
	}
	f := &FFmpeg{binary: "ffmpeg", logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type loudnormStats struct {
	InputI      string `json:"input_i"`
	InputTP     string `json:"input_tp"`
	InputLRA    string `json:"input_lra"`
	InputThresh string `json:"input_thresh"`
	Offset      string `json:"target_offset"`
}

// Normalize rewrites path at the requested loudness, transcoding into the
// spec's output format. The encode lands in a temp file next to the source
// and only replaces it after a non-empty result is confirmed.
func (f *FFmpeg) Normalize(ctx context.Context, path string, spec Spec) (bool, error) {
	if path == "" {
		return false, services.Wrap(services.ErrExternal, "audio", "normalize", "file path required", nil)
	}

	stats, err := f.measure(ctx, path, spec.TargetLUFS)
	if err != nil {
		return false, err
	}

	format, transcode := LookupFormat(spec.OutputFormat)
	finalPath := path
	if transcode {
		finalPath = FinalName(path, spec.OutputFormat)
	}
	tmpPath := tempOutputPath(finalPath)
	defer os.Remove(tmpPath)

	filter := fmt.Sprintf(
		"loudnorm=I=%g:TP=-1.5:LRA=11:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s:linear=true",
		spec.TargetLUFS, stats.InputI, stats.InputTP, stats.InputLRA, stats.InputThresh, stats.Offset)

	args := []string{"-hide_banner", "-nostdin", "-y", "-i", path, "-af", filter}
	if transcode {
		bitrate := spec.Bitrate
		if bitrate == "" {
			bitrate = format.DefaultBitrate
		}
		args = append(args, "-c:a", format.Codec)
		if bitrate != "" {
			args = append(args, "-b:a", bitrate)
		}
	}
	args = append(args, tmpPath)

	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false, services.Wrap(services.ErrExternal, "audio", "normalize",
			fmt.Sprintf("ffmpeg encode failed: %s", lastLine(stderr.String())), err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil || info.Size() == 0 {
		return false, services.Wrap(services.ErrExternal, "audio", "normalize", "ffmpeg produced no output", err)
	}

	if err := fileutil.MoveFile(tmpPath, finalPath); err != nil {
		return false, services.Wrap(services.ErrExternal, "audio", "normalize", "replace output", err)
	}
	if finalPath != path {
		if err := os.Remove(path); err != nil {
			f.logger.Warn("failed to remove pre-normalization file",
				logging.String("path", path), logging.Error(err))
		}
	}
	return true, nil
}

// measure runs the loudnorm analysis pass and parses the JSON stats ffmpeg
// prints at the end of stderr.
func (f *FFmpeg) measure(ctx context.Context, path string, targetLUFS float64) (*loudnormStats, error) {
	filter := fmt.Sprintf("loudnorm=I=%g:TP=-1.5:LRA=11:print_format=json", targetLUFS)
	cmd := commandContext(ctx, f.binary, "-hide_banner", "-nostdin", "-i", path, "-af", filter, "-f", "null", "-") //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrExternal, "audio", "measure",
			fmt.Sprintf("ffmpeg loudness analysis failed: %s", lastLine(stderr.String())), err)
	}

	payload := stderr.String()
	start := strings.LastIndex(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start == -1 || end <= start {
		return nil, services.Wrap(services.ErrExternal, "audio", "measure", "no loudnorm stats in ffmpeg output", nil)
	}
	var stats loudnormStats
	if err := json.Unmarshal([]byte(payload[start:end+1]), &stats); err != nil {
		return nil, services.Wrap(services.ErrExternal, "audio", "measure", "parse loudnorm stats", err)
	}
	return &stats, nil
}

func tempOutputPath(finalPath string) string {
	dir := filepath.Dir(finalPath)
	base := filepath.Base(finalPath)
	return filepath.Join(dir, ".norm-"+base)
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Normalizer = (*FFmpeg)(nil)

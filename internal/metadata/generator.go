package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"mailcrate/internal/logging"
	"mailcrate/internal/release"
	"mailcrate/internal/services"
	"mailcrate/internal/services/llm"
)

const systemPrompt = "You are a metadata extraction assistant. Respond only with valid JSON."

const promptTemplate = `Extract structured metadata from this music release newsletter.

Respond with valid JSON only. Follow the schema exactly.

IMPORTANT NOTES:
- Numbers in filenames do NOT indicate track order - use the order from the message body
- Use the "slugified" filename from attachments (the processed version)
- Escape all special characters properly in JSON
- the FIRST image is the release image.
- all subsequent images should be assumed to be the track images in order.

SUBJECT: %s

ATTACHMENTS AVAILABLE:
%s

MESSAGE BODY:
%s

EXPECTED SCHEMA:
%s

Return ONLY valid JSON matching the schema above.`

const schemaDocument = `{
    "release_number": "int",
    "release_image": "string (filename)",
    "tracks": [
        {
            "track_num": "int",
            "title": "string",
            "credits": "string",
            "date_written": "string (YYYY-MM-DD)",
            "lyrics": "string",
            "audio_file": "string (slugified filename)",
            "track_image": "string (filename)"
        }
    ]
}`

// Completer is the slice of the model client the generator needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator turns a release's raw record into a metadata document.
type Generator struct {
	client Completer
	logger *slog.Logger
}

// NewGenerator builds a generator over a completion client.
func NewGenerator(client Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Generate derives and saves metadata.json for the release in dir. The model
// client retries rate limits internally; any failure that survives comes back
// as an external-service error so callers can keep the raw record usable.
func (g *Generator) Generate(ctx context.Context, dir string) error {
	rec, err := release.Load(dir)
	if err != nil {
		return services.Wrap(services.ErrExternal, "metadata", "generate", "load raw record", err)
	}

	content, err := g.client.CompleteJSON(ctx, systemPrompt, buildPrompt(rec))
	if err != nil {
		// A rate limit that exhausted its retries degrades to a plain
		// external failure here; the release stays valid without metadata.
		return services.Wrap(services.ErrExternal, "metadata", "generate", "completion failed", err)
	}

	var meta Metadata
	if err := llm.DecodeJSON(content, &meta); err != nil {
		return services.Wrap(services.ErrExternal, "metadata", "generate", "parse model payload", err)
	}
	if err := Save(dir, &meta); err != nil {
		return services.Wrap(services.ErrExternal, "metadata", "generate", "save metadata", err)
	}
	g.logger.Info("metadata generated",
		logging.String("dir", dir), logging.Int("tracks", len(meta.Tracks)))
	return nil
}

func buildPrompt(rec *release.Record) string {
	attachments := "[]"
	if len(rec.Attachments) > 0 {
		if encoded, err := json.MarshalIndent(rec.Attachments, "", "  "); err == nil {
			attachments = string(encoded)
		}
	}
	subject := "Unknown"
	if len(rec.Subject) > 0 {
		subject = strings.Join(rec.Subject, " / ")
	}
	return fmt.Sprintf(promptTemplate, subject, attachments, rec.Body, schemaDocument)
}

package handler

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/fumiama/go-docx"

	"mailcrate/internal/logging"
)

const defaultTextField = "extracted_text"

// documentTextExtractor saves a document and, when the workflow asks for it,
// pulls every paragraph's text into the side channel. Extraction problems
// never lose the file.
type documentTextExtractor struct {
	logger *slog.Logger
}

func (h *documentTextExtractor) Process(ctx context.Context, req Request, acc *SideChannel) ([]SavedFile, error) {
	saved, err := saveVerbatim(req.Attachment, req.TargetDir, "document")
	if err != nil {
		return nil, err
	}
	if !req.Workflow.ExtractLyrics {
		return []SavedFile{saved}, nil
	}

	text, err := paragraphText(req.Attachment.Data)
	if err != nil {
		h.logger.Warn("document text extraction failed, file kept",
			logging.String(logging.FieldAttachment, saved.Slugified), logging.Error(err))
		return []SavedFile{saved}, nil
	}
	acc.Set(req.Options.String("field_name", defaultTextField), text)
	return []SavedFile{saved}, nil
}

func paragraphText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, para.String())
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

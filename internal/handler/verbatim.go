package handler

import "context"

// verbatimSaver writes the attachment unchanged. Used for images and as the
// configured catch-all.
type verbatimSaver struct{}

func (verbatimSaver) Process(ctx context.Context, req Request, acc *SideChannel) ([]SavedFile, error) {
	fileType := ""
	if isImage(req.Attachment.Filename) {
		fileType = "image"
	}
	saved, err := saveVerbatim(req.Attachment, req.TargetDir, fileType)
	if err != nil {
		return nil, err
	}
	return []SavedFile{saved}, nil
}

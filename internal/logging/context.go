package logging

import (
	"context"
	"log/slog"

	"mailcrate/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldWorkflow is the standardized structured logging key for workflow names.
	FieldWorkflow = "workflow"
	// FieldUID is the standardized structured logging key for email uids.
	FieldUID = "uid"
	// FieldRelease is the standardized structured logging key for release folder names.
	FieldRelease = "release"
	// FieldRunID is the standardized structured logging key for run correlation identifiers.
	FieldRunID = "run_id"
	// FieldSubject is the standardized structured logging key for email subjects.
	FieldSubject = "subject"
	// FieldAttachment is the standardized structured logging key for attachment filenames.
	FieldAttachment = "attachment"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if wf, ok := services.WorkflowFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldWorkflow, wf))
	}
	if uid, ok := services.UIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldUID, uid))
	}
	if release, ok := services.ReleaseFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRelease, release))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}

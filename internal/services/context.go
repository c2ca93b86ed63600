package services

import "context"

type contextKey string

const (
	workflowKey contextKey = "workflow"
	uidKey      contextKey = "uid"
	releaseKey  contextKey = "release"
	runIDKey    contextKey = "run_id"
)

// WithWorkflow annotates context with the active workflow name.
func WithWorkflow(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, workflowKey, name)
}

// WorkflowFromContext returns the workflow name if present.
func WorkflowFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(workflowKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithUID annotates context with the email uid being processed.
func WithUID(ctx context.Context, uid string) context.Context {
	if uid == "" {
		return ctx
	}
	return context.WithValue(ctx, uidKey, uid)
}

// UIDFromContext returns the email uid if present.
func UIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(uidKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRelease annotates context with the resolved release folder name.
func WithRelease(ctx context.Context, release string) context.Context {
	if release == "" {
		return ctx
	}
	return context.WithValue(ctx, releaseKey, release)
}

// ReleaseFromContext returns the release folder name if present.
func ReleaseFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(releaseKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

package services

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithWorkflow(ctx, "sonic_twist")
	ctx = WithUID(ctx, "1042")
	ctx = WithRelease(ctx, "Issue_42")
	ctx = WithRunID(ctx, "run-abc")

	if got, ok := WorkflowFromContext(ctx); !ok || got != "sonic_twist" {
		t.Fatalf("workflow = %q, %v", got, ok)
	}
	if got, ok := UIDFromContext(ctx); !ok || got != "1042" {
		t.Fatalf("uid = %q, %v", got, ok)
	}
	if got, ok := ReleaseFromContext(ctx); !ok || got != "Issue_42" {
		t.Fatalf("release = %q, %v", got, ok)
	}
	if got, ok := RunIDFromContext(ctx); !ok || got != "run-abc" {
		t.Fatalf("run id = %q, %v", got, ok)
	}
}

func TestContextEmptyValuesIgnored(t *testing.T) {
	ctx := WithWorkflow(context.Background(), "")
	if _, ok := WorkflowFromContext(ctx); ok {
		t.Fatal("empty workflow should not be stored")
	}
}

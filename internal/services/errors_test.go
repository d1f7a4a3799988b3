package services

import (
	"context"
	"errors"
	"testing"

	"dubforge/internal/queue"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(ErrExternalTool, "transcribe", "run whisperx", "exit status 1", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Error("wrapped error lost its marker")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error lost its cause")
	}
	want := "external tool error: transcribe: run whisperx: exit status 1: boom"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Error("nil marker must default to ErrTransient")
	}
	if err.Error() != "transient failure: service failure" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want queue.Status
	}{
		{"validation goes to review", Wrap(ErrValidation, "translate", "", "bad payload", nil), queue.StatusReview},
		{"configuration goes to review", Wrap(ErrConfiguration, "", "", "missing key", nil), queue.StatusReview},
		{"not found goes to review", Wrap(ErrNotFound, "", "", "", nil), queue.StatusReview},
		{"tool failure goes to failed", Wrap(ErrExternalTool, "separate", "", "", nil), queue.StatusFailed},
		{"plain error goes to failed", errors.New("boom"), queue.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureStatus(tt.err); got != tt.want {
				t.Errorf("FailureStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := WithTaskID(context.Background(), 7)
	ctx = WithStage(ctx, "render")
	ctx = WithRequestID(ctx, "req-1")

	if id, ok := TaskIDFromContext(ctx); !ok || id != 7 {
		t.Errorf("task id = %d, %v", id, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "render" {
		t.Errorf("stage = %q, %v", stage, ok)
	}
	if req, ok := RequestIDFromContext(ctx); !ok || req != "req-1" {
		t.Errorf("request id = %q, %v", req, ok)
	}

	if _, ok := TaskIDFromContext(context.Background()); ok {
		t.Error("empty context must not yield a task id")
	}
}

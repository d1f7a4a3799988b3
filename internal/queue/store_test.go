package queue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewTaskStartsPending(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	task, err := store.NewTask(ctx, "/media/show.mkv", "show", "en", "es")
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	if task.Status != StatusPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.ID == 0 {
		t.Error("task id not assigned")
	}
	if task.SourcePath != "/media/show.mkv" || task.TargetLanguage != "es" {
		t.Errorf("task fields not persisted: %+v", task)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	task, err := store.NewTask(ctx, "/media/a.mkv", "a", "en", "ja")
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	task.Status = StatusTranscribed
	task.AudioPath = "/staging/a/audio.wav"
	task.SegmentsPath = "/staging/a/segments.json"
	if err := store.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusTranscribed {
		t.Errorf("status = %q", got.Status)
	}
	if got.SegmentsPath != "/staging/a/segments.json" {
		t.Errorf("segments path = %q", got.SegmentsPath)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("updated_at went backwards")
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	task, err := store.NewTask(ctx, "/media/a.mkv", "a", "en", "es")
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	task.Status = Status("dancing")
	if err := store.Update(ctx, task); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestNextWithStatusOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, _ := store.NewTask(ctx, "/media/1.mkv", "1", "en", "es")
	second, _ := store.NewTask(ctx, "/media/2.mkv", "2", "en", "es")

	first.Status = StatusCompleted
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}

	next, err := store.NextWithStatus(ctx, StatusPending)
	if err != nil {
		t.Fatalf("NextWithStatus: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Errorf("next = %+v, want task %d", next, second.ID)
	}

	none, err := store.NextWithStatus(ctx, StatusTranslated)
	if err != nil {
		t.Fatalf("NextWithStatus: %v", err)
	}
	if none != nil {
		t.Errorf("expected no translated task, got %+v", none)
	}
}

func TestResetProcessingRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	cases := map[Status]Status{
		StatusSeparating:   StatusPending,
		StatusTranscribing: StatusSeparated,
		StatusRendering:    StatusSynthesized,
	}
	ids := make(map[int64]Status)
	for inflight, want := range cases {
		task, err := store.NewTask(ctx, "/media/x.mkv", "x", "en", "es")
		if err != nil {
			t.Fatalf("NewTask: %v", err)
		}
		task.Status = inflight
		if err := store.Update(ctx, task); err != nil {
			t.Fatalf("Update: %v", err)
		}
		ids[task.ID] = want
	}

	if err := store.ResetProcessing(ctx); err != nil {
		t.Fatalf("ResetProcessing: %v", err)
	}
	for id, want := range ids {
		got, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != want {
			t.Errorf("task %d status = %q, want %q", id, got.Status, want)
		}
	}
}

func TestDeleteAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	task, _ := store.NewTask(ctx, "/media/a.mkv", "a", "en", "es")
	if err := store.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	_, _ = store.NewTask(ctx, "/media/b.mkv", "b", "en", "es")
	_, _ = store.NewTask(ctx, "/media/c.mkv", "c", "en", "es")
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty queue, got %d tasks", len(tasks))
	}
}

func TestHealthCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	statuses := []Status{StatusPending, StatusTranscribing, StatusCompleted, StatusFailed, StatusReview}
	for _, status := range statuses {
		task, err := store.NewTask(ctx, "/media/x.mkv", "x", "en", "es")
		if err != nil {
			t.Fatalf("NewTask: %v", err)
		}
		if status != StatusPending {
			task.Status = status
			if err := store.Update(ctx, task); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if summary.Total != 5 || summary.Pending != 1 || summary.Processing != 1 ||
		summary.Completed != 1 || summary.Failed != 1 || summary.Review != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.db")

	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if _, err := store.NewTask(context.Background(), "/media/a.mkv", "a", "en", "es"); err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	tasks, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("expected 1 task after reopen, got %d", len(tasks))
	}
}

package jobxmem_test

import (
	"context"
	"testing"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/jobx"
	"github.com/pierre-fitness/pierre-server/internal/jobx/jobxmem"
)

func TestQueue_EnqueueDequeueComplete(t *testing.T) {
	q := jobxmem.New()
	ctx := context.Background()

	id, err := q.Enqueue(ctx, jobx.Job{Type: "sync_provider", Queue: "default", MaxRetries: 3})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	info, err := q.Dequeue(ctx, []string{"default"}, time.Second)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if info == nil {
		t.Fatal("expected a job, got nil")
	}
	if info.ID != id || info.Status != jobx.JobStatusActive || info.Attempts != 1 {
		t.Fatalf("unexpected job state: %+v", info)
	}

	if err := q.Complete(ctx, id, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	final, err := q.GetJob(ctx, id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if final.Status != jobx.JobStatusCompleted {
		t.Fatalf("expected completed status, got %s", final.Status)
	}
}

func TestQueue_DequeueTimesOutWhenEmpty(t *testing.T) {
	q := jobxmem.New()
	info, err := q.Dequeue(context.Background(), []string{"default"}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if info != nil {
		t.Fatalf("expected no job, got %+v", info)
	}
}

func TestQueue_FailRetriesUntilMaxAttempts(t *testing.T) {
	q := jobxmem.New()
	ctx := context.Background()

	id, _ := q.Enqueue(ctx, jobx.Job{Type: "refresh_token", Queue: "default", MaxRetries: 2})

	if _, err := q.Dequeue(ctx, []string{"default"}, time.Second); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	retry, err := q.Fail(ctx, id, "provider unavailable")
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if !retry {
		t.Fatal("expected a retry on the first failure (1 attempt < 2 max)")
	}

	if err := q.Retry(ctx, id, 10*time.Millisecond); err != nil {
		t.Fatalf("retry: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := q.PromoteScheduled(ctx, []string{"default"}); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if _, err := q.Dequeue(ctx, []string{"default"}, time.Second); err != nil {
		t.Fatalf("dequeue after promote: %v", err)
	}
	retry, err = q.Fail(ctx, id, "provider unavailable again")
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if retry {
		t.Fatal("expected no further retry once attempts reach max_retries")
	}

	final, err := q.GetJob(ctx, id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if final.Status != jobx.JobStatusFailed {
		t.Fatalf("expected failed status, got %s", final.Status)
	}
}

func TestQueue_EnqueueDelayedNotReadyUntilDue(t *testing.T) {
	q := jobxmem.New()
	ctx := context.Background()

	if _, err := q.EnqueueDelayed(ctx, jobx.Job{Type: "digest", Queue: "default", MaxRetries: 1}, 50*time.Millisecond); err != nil {
		t.Fatalf("enqueue delayed: %v", err)
	}

	if info, _ := q.Dequeue(ctx, []string{"default"}, 10*time.Millisecond); info != nil {
		t.Fatal("job should not be ready before its delay elapses")
	}

	time.Sleep(60 * time.Millisecond)
	if err := q.PromoteScheduled(ctx, []string{"default"}); err != nil {
		t.Fatalf("promote: %v", err)
	}

	info, err := q.Dequeue(ctx, []string{"default"}, time.Second)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if info == nil {
		t.Fatal("expected the promoted job to be ready")
	}
}

func TestQueue_GetJobUnknownID(t *testing.T) {
	q := jobxmem.New()
	if _, err := q.GetJob(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for an unknown job id")
	}
}

package usage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/jobx"
	"github.com/pierre-fitness/pierre-server/internal/store"
	"github.com/pierre-fitness/pierre-server/internal/usage"
)

// inMemoryQueue is a minimal jobx.Queue that stores enqueued jobs in
// memory, enough to exercise Recorder.Record without a Redis backend.
type inMemoryQueue struct {
	enqueued []jobx.Job
}

func (q *inMemoryQueue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	q.enqueued = append(q.enqueued, job)
	return "job-1", nil
}

func (q *inMemoryQueue) EnqueueDelayed(ctx context.Context, job jobx.Job, delay time.Duration) (string, error) {
	q.enqueued = append(q.enqueued, job)
	return "job-1", nil
}

func (q *inMemoryQueue) GetJob(ctx context.Context, jobID string) (*jobx.JobInfo, error) {
	return nil, nil
}

func (q *inMemoryQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	return nil, nil
}
func (q *inMemoryQueue) Complete(ctx context.Context, jobID string, result []byte) error { return nil }
func (q *inMemoryQueue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	return false, nil
}
func (q *inMemoryQueue) Retry(ctx context.Context, jobID string, delay time.Duration) error {
	return nil
}
func (q *inMemoryQueue) PromoteScheduled(ctx context.Context, queues []string) error { return nil }

func TestRecorder_Record_EnqueuesOneJobPerRow(t *testing.T) {
	q := &inMemoryQueue{}
	client := jobx.NewClient(q)
	recorder := usage.NewRecorder(client)

	row := store.APIKeyUsage{ID: "usage-1", APIKeyID: "key-1", ToolName: "get_activities", StatusCode: 200}
	recorder.Record(context.Background(), row)

	if len(q.enqueued) != 1 {
		t.Fatalf("expected exactly 1 enqueued job, got %d", len(q.enqueued))
	}
	if q.enqueued[0].Type != usage.JobTypeRecordUsage {
		t.Fatalf("unexpected job type %q", q.enqueued[0].Type)
	}

	var decoded store.APIKeyUsage
	if err := json.Unmarshal(q.enqueued[0].Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.APIKeyID != "key-1" || decoded.ToolName != "get_activities" {
		t.Fatalf("unexpected decoded row: %+v", decoded)
	}
}

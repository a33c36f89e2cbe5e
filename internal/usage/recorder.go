// Package usage implements C3's asynchronous usage-row writer (spec.md
// §4.3/§8 property 2: "For every completed tool call, exactly one
// APIKeyUsage row exists within 5 s"). Recording happens off the request
// path through internal/jobx so a slow or unavailable store never adds
// latency to the caller.
package usage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/jobx"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

const JobTypeRecordUsage = "usage.record"

// Recorder enqueues APIKeyUsage rows for background persistence. Record
// never blocks the caller: enqueue failures are logged and dropped,
// matching spec.md §7's "usage-row write failures" suppressed-error case.
type Recorder struct {
	jobs *jobx.Client
}

func NewRecorder(jobs *jobx.Client) *Recorder {
	return &Recorder{jobs: jobs}
}

// Record enqueues one usage row. Loss is acceptable only on crash per
// spec.md §4.1's durability note; enqueue itself is synchronous and cheap
// (a Redis RPUSH via jobxredis), so failures here indicate the queue
// backend itself is down, not ordinary backpressure.
func (r *Recorder) Record(ctx context.Context, row store.APIKeyUsage) {
	payload, err := json.Marshal(row)
	if err != nil {
		logx.WithError(err).Warn("usage: failed to marshal usage row")
		return
	}

	if _, err := r.jobs.Enqueue(ctx, jobx.Job{
		Type:    JobTypeRecordUsage,
		Queue:   jobx.QueueUsage,
		Payload: payload,
	}); err != nil {
		logx.WithError(err).WithTool(row.ToolName).Warn("usage: failed to enqueue usage row, dropping")
	}
}

// RegisterWriter wires the durable write-through handler the worker pool
// runs for JobTypeRecordUsage jobs. Called once at composition-root time
// (spec.md §4.3 "the background writer preserves enqueue order" — jobx's
// single-queue FIFO semantics give us that for free per API key queue).
func RegisterWriter(jobs *jobx.Client, st store.APIKeyRepository) {
	jobs.Register(JobTypeRecordUsage, func(ctx context.Context, job *jobx.JobInfo) error {
		var row store.APIKeyUsage
		if err := json.Unmarshal(job.Payload, &row); err != nil {
			return err
		}
		return st.RecordUsage(ctx, row)
	})
}

// Package jobxmem implements jobx.Queue entirely in process memory, for
// the default single-file SQLite deployment (spec.md §6) where no Redis
// URL is configured. Grounded on jobxredis's same state machine (ready
// list per queue, an unordered scheduled set scanned by time, one job record per
// ID) but guarded by a single mutex instead of Redis commands, the way
// internal/ratelimit.Limiter holds its counters.
package jobxmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/jobx"
)

var memErrors = errx.NewRegistry("JOBX_MEM")

var ErrNotFound = memErrors.Register("NOT_FOUND", errx.TypeNotFound, 404, "job not found")

type scheduledEntry struct {
	jobID string
	at    time.Time
}

// Queue implements jobx.Queue with in-memory state. Safe for concurrent
// use; state does not survive a process restart, matching spec.md §9's
// acceptance of single-process-only SSE fanout for the same deployment
// tier.
type Queue struct {
	mu        sync.Mutex
	jobs      map[string]*jobx.JobInfo
	ready     map[string][]string // queue name -> FIFO of job IDs
	scheduled []scheduledEntry
	notify    chan struct{}
}

func New() *Queue {
	return &Queue{
		jobs:   make(map[string]*jobx.JobInfo),
		ready:  make(map[string][]string),
		notify: make(chan struct{}, 1),
	}
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *Queue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	info := &jobx.JobInfo{
		ID: id, Type: job.Type, Queue: job.Queue, Payload: job.Payload,
		Status: jobx.JobStatusPending, MaxRetries: job.MaxRetries,
		CreatedAt: now, UpdatedAt: now,
	}

	q.mu.Lock()
	q.jobs[id] = info
	q.ready[job.Queue] = append(q.ready[job.Queue], id)
	q.mu.Unlock()

	q.wake()
	return id, nil
}

func (q *Queue) EnqueueDelayed(ctx context.Context, job jobx.Job, delay time.Duration) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	info := &jobx.JobInfo{
		ID: id, Type: job.Type, Queue: job.Queue, Payload: job.Payload,
		Status: jobx.JobStatusPending, MaxRetries: job.MaxRetries,
		CreatedAt: now, UpdatedAt: now,
	}

	q.mu.Lock()
	q.jobs[id] = info
	q.scheduled = append(q.scheduled, scheduledEntry{jobID: id, at: now.Add(delay)})
	q.mu.Unlock()

	return id, nil
}

func (q *Queue) GetJob(ctx context.Context, jobID string) (*jobx.JobInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.jobs[jobID]
	if !ok {
		return nil, memErrors.New(ErrNotFound).WithDetail("job_id", jobID)
	}
	clone := *info
	return &clone, nil
}

// Dequeue pops the oldest ready job of the first non-empty queue, checking
// queues in the order given (not the oldest across all of them), waking on Enqueue or
// after timeout, whichever comes first — the in-memory analogue of
// jobxredis's BRPOP across queue keys.
func (q *Queue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	deadline := time.Now().Add(timeout)
	for {
		if info := q.tryPop(queues); info != nil {
			return info, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-q.notify:
		case <-time.After(remaining):
			return nil, nil
		}
	}
}

func (q *Queue) tryPop(queues []string) *jobx.JobInfo {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, name := range queues {
		ids := q.ready[name]
		if len(ids) == 0 {
			continue
		}
		id := ids[0]
		q.ready[name] = ids[1:]

		info, ok := q.jobs[id]
		if !ok {
			continue
		}
		info.Status = jobx.JobStatusActive
		info.Attempts++
		info.UpdatedAt = time.Now().UTC()
		clone := *info
		return &clone
	}
	return nil
}

func (q *Queue) Complete(ctx context.Context, jobID string, result []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.jobs[jobID]
	if !ok {
		return memErrors.New(ErrNotFound).WithDetail("job_id", jobID)
	}
	info.Status = jobx.JobStatusCompleted
	info.Result = result
	info.UpdatedAt = time.Now().UTC()
	return nil
}

func (q *Queue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.jobs[jobID]
	if !ok {
		return false, memErrors.New(ErrNotFound).WithDetail("job_id", jobID)
	}
	shouldRetry := info.Attempts < info.MaxRetries
	if shouldRetry {
		info.Status = jobx.JobStatusRetrying
	} else {
		info.Status = jobx.JobStatusFailed
	}
	info.Error = errMsg
	info.UpdatedAt = time.Now().UTC()
	return shouldRetry, nil
}

func (q *Queue) Retry(ctx context.Context, jobID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.jobs[jobID]
	if !ok {
		return memErrors.New(ErrNotFound).WithDetail("job_id", jobID)
	}
	q.scheduled = append(q.scheduled, scheduledEntry{jobID: jobID, at: time.Now().UTC().Add(delay)})
	_ = info
	return nil
}

// PromoteScheduled moves due entries from the scheduled set to the ready
// queue of the job's own Queue field — jobxredis keys the scheduled set
// per queue name, but since this implementation holds one scheduled slice
// for the whole process, it filters by the caller-supplied queues list.
func (q *Queue) PromoteScheduled(ctx context.Context, queues []string) error {
	wanted := make(map[string]bool, len(queues))
	for _, name := range queues {
		wanted[name] = true
	}

	q.mu.Lock()
	now := time.Now().UTC()
	var remaining []scheduledEntry
	var promoted int
	for _, e := range q.scheduled {
		info, ok := q.jobs[e.jobID]
		if !ok || !wanted[info.Queue] || now.Before(e.at) {
			remaining = append(remaining, e)
			continue
		}
		q.ready[info.Queue] = append(q.ready[info.Queue], e.jobID)
		promoted++
	}
	q.scheduled = remaining
	q.mu.Unlock()

	if promoted > 0 {
		q.wake()
	}
	return nil
}

// Package async runs report assembly on a bounded worker pool so callers can
// submit photos, poll the job and fetch the workbook later.
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yomijipsa-art/concrete-ai/constants"
	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
)

// Assembler is the work a job performs.
type Assembler interface {
	Assemble(ctx context.Context, photos []report.Photo) (*report.Result, error)
}

// Snapshot is the externally visible state of a job.
type Snapshot struct {
	ID            string              `json:"id"`
	Status        constants.JobStatus `json:"status"`
	Busy          bool                `json:"busy"`
	Error         string              `json:"error,omitempty"`
	Filename      string              `json:"filename,omitempty"`
	MissingFields []string            `json:"missing_fields,omitempty"`
	SubmittedAt   time.Time           `json:"submitted_at"`
	StartedAt     *time.Time          `json:"started_at,omitempty"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
}

type job struct {
	id     string
	photos []report.Photo
	ctx    context.Context
	cancel context.CancelFunc

	status    constants.JobStatus
	err       error
	result    *report.Result
	submitted time.Time
	started   time.Time
	finished  time.Time
}

type Queue struct {
	asm       Assembler
	logger    *slog.Logger
	workers   int
	size      int
	timeout   time.Duration
	retention time.Duration
	now       func() time.Time

	ch   chan *job
	wg   sync.WaitGroup
	once sync.Once

	base       context.Context
	cancelBase context.CancelFunc

	mu     sync.Mutex
	closed bool
	jobs   map[string]*job
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.size = n
		}
	}
}

// WithProcessTimeout bounds each job. Zero keeps jobs unbounded.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithRetention sets how long finished jobs stay queryable.
func WithRetention(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.retention = d
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

func NewQueue(asm Assembler, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		asm:       asm,
		logger:    logger,
		workers:   2,
		size:      16,
		retention: 15 * time.Minute,
		now:       time.Now,
		jobs:      make(map[string]*job),
	}
	for _, o := range opts {
		o(q)
	}
	q.ch = make(chan *job, q.size)
	q.base, q.cancelBase = context.WithCancel(context.Background())
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)
				for j := range q.ch {
					q.run(workerID, j)
				}
				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Submit enqueues a report job and returns its ID. It never blocks: a full
// queue or one that is shutting down yields an unavailable error.
func (q *Queue) Submit(ctx context.Context, photos []report.Photo) (string, error) {
	if len(photos) != constants.RequiredPhotos {
		return "", common.NewUserInputError(
			fmt.Sprintf("exactly %d photos are required, got %d", constants.RequiredPhotos, len(photos)), nil)
	}
	log := common.LoggerWith(ctx, q.logger)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()
	if q.closed {
		log.Warn("queue.submit.rejected", "reason", "shutting_down")
		return "", common.NewUnavailableError("job queue is shutting down")
	}

	jctx, cancel := context.WithCancel(q.base)
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		jctx = common.WithRequestID(jctx, rid)
	}
	j := &job{
		id:        uuid.NewString(),
		photos:    photos,
		ctx:       jctx,
		cancel:    cancel,
		status:    constants.JobStatusQueued,
		submitted: q.now(),
	}
	select {
	case q.ch <- j:
	default:
		cancel()
		log.Warn("queue.submit.rejected", "reason", "full", "size", q.size)
		return "", common.NewUnavailableError("job queue is full")
	}
	q.jobs[j.id] = j
	log.Info("queue.submit.ok", "job_id", j.id, "pending", len(q.ch))
	return j.id, nil
}

// Get returns the job's current state.
func (q *Queue) Get(id string) (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()
	j, ok := q.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return j.snapshot(), true
}

// Result returns the finished report. Busy jobs give a conflict error; failed
// jobs give the error they failed with.
func (q *Queue) Result(id string) (*report.Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()
	j, ok := q.jobs[id]
	if !ok {
		return nil, common.NewNotFoundError("job not found: " + id)
	}
	switch j.status {
	case constants.JobStatusSucceeded:
		return j.result, nil
	case constants.JobStatusFailed:
		return nil, j.err
	case constants.JobStatusCanceled:
		return nil, common.NewConflictError("job was canceled")
	default:
		return nil, common.NewConflictError("job is still " + string(j.status))
	}
}

// Cancel stops a queued or running job. The running model call sees its
// context canceled.
func (q *Queue) Cancel(id string) (Snapshot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return Snapshot{}, common.NewNotFoundError("job not found: " + id)
	}
	if j.status.Terminal() {
		return j.snapshot(), common.NewConflictError("job already " + string(j.status))
	}
	j.cancel()
	if j.status == constants.JobStatusQueued {
		j.finish(constants.JobStatusCanceled, q.now())
	}
	q.logger.Info("queue.cancel", "job_id", id, "status", j.status)
	return j.snapshot(), nil
}

// Shutdown stops accepting jobs and waits for the workers to drain the
// queue. When ctx ends first, outstanding jobs are canceled and Shutdown
// still waits for the workers to return.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-done:
		q.cancelBase()
		q.logger.Info("queue.shutdown.ok")
		return nil
	case <-ctx.Done():
		q.cancelBase()
		<-done
		q.logger.Warn("queue.shutdown.interrupted", "error", ctx.Err())
		return ctx.Err()
	}
}

func (q *Queue) run(workerID int, j *job) {
	q.mu.Lock()
	if j.status != constants.JobStatusQueued {
		q.mu.Unlock()
		return
	}
	if j.ctx.Err() != nil {
		j.finish(constants.JobStatusCanceled, q.now())
		q.mu.Unlock()
		return
	}
	j.status = constants.JobStatusRunning
	j.started = q.now()
	photos := j.photos
	q.mu.Unlock()

	ctx := common.WithJobID(j.ctx, j.id)
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	res, err := q.asm.Assemble(ctx, photos)

	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case err != nil && j.ctx.Err() != nil:
		j.err = err
		j.finish(constants.JobStatusCanceled, q.now())
		q.logger.Info("queue.job.canceled", "worker_id", workerID, "job_id", j.id)
	case err != nil:
		if errors.Is(err, context.DeadlineExceeded) && !common.IsProcessing(err) {
			err = common.NewProcessingError("job timed out", err)
		}
		j.err = err
		j.finish(constants.JobStatusFailed, q.now())
		q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", j.id, "error", err)
	default:
		j.result = res
		j.finish(constants.JobStatusSucceeded, q.now())
		q.logger.Info("queue.job.ok", "worker_id", workerID, "job_id", j.id,
			"elapsed_ms", j.finished.Sub(j.started).Milliseconds())
	}
}

// sweepLocked evicts finished jobs older than the retention window.
func (q *Queue) sweepLocked() {
	cutoff := q.now().Add(-q.retention)
	for id, j := range q.jobs {
		if j.status.Terminal() && j.finished.Before(cutoff) {
			delete(q.jobs, id)
		}
	}
}

func (j *job) finish(status constants.JobStatus, at time.Time) {
	j.status = status
	j.finished = at
	j.photos = nil
	j.cancel()
}

func (j *job) snapshot() Snapshot {
	s := Snapshot{
		ID:          j.id,
		Status:      j.status,
		Busy:        j.status.Busy(),
		SubmittedAt: j.submitted,
	}
	if !j.started.IsZero() {
		t := j.started
		s.StartedAt = &t
	}
	if !j.finished.IsZero() {
		t := j.finished
		s.FinishedAt = &t
	}
	if j.err != nil && j.status == constants.JobStatusFailed {
		s.Error = common.PublicMessage(j.err)
	}
	if j.result != nil {
		s.Filename = j.result.Filename
		for _, f := range j.result.Missing {
			s.MissingFields = append(s.MissingFields, string(f))
		}
	}
	return s
}

// Package jobqueue runs named background jobs over pkg/messaging.
//
// Jobs are published on "<prefix>.<name>" and consumed by one replica
// through a shared consumer group. Failed jobs are not retried; fail
// listeners registered with OnFail are told instead.
package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/idempotency"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/messaging"
	"github.com/shandysiswandi/isaback/internal/pkg/stacktrace"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
	"go.uber.org/atomic"
)

var (
	// ErrUnknownJob is returned when a job name has no processor.
	ErrUnknownJob = errors.New("jobqueue: unknown job")
	// ErrAlreadyListening is returned by a second Listen call.
	ErrAlreadyListening = errors.New("jobqueue: already listening")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("jobqueue: closed")
)

const headerCorrelationID = "X-Correlation-ID"

// Processor handles one job.
type Processor func(ctx context.Context, job Job) error

// FailListener is told about every job whose processor failed or panicked.
type FailListener func(ctx context.Context, job Job, err error)

// Config tunes the queue.
type Config struct {
	// Prefix namespaces subjects and dedup keys. Defaults to "jobs".
	Prefix string
	// Group is the consumer group shared by replicas. Defaults to Prefix.
	Group string
	// Concurrency is the number of workers per job name. Defaults to 1.
	Concurrency int
	// Timeout bounds a single processor run. Zero means no limit.
	Timeout time.Duration
}

// Dependency holds what the queue needs at runtime.
type Dependency struct {
	Messaging   messaging.Messaging
	Idempotency idempotency.Idempotency
	ID          uid.NumberID
	Clock       clock.Clocker
}

// Queue is a named-job queue.
type Queue struct {
	cfg Config
	dep Dependency

	mu         sync.RWMutex
	processors map[string]Processor
	listeners  []FailListener

	listening atomic.Bool
	closed    atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a queue. Nothing is consumed before Listen.
func New(cfg Config, dep Dependency) *Queue {
	if cfg.Prefix == "" {
		cfg.Prefix = "jobs"
	}
	if cfg.Group == "" {
		cfg.Group = cfg.Prefix
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if dep.Clock == nil {
		dep.Clock = clock.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		cfg:        cfg,
		dep:        dep,
		processors: map[string]Processor{},
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Define registers the processor for name, replacing any previous one.
// Processors defined after Listen start consuming right away.
func (q *Queue) Define(name string, p Processor) {
	q.mu.Lock()
	_, existed := q.processors[name]
	q.processors[name] = p
	q.mu.Unlock()

	if !existed && q.listening.Load() {
		q.consume(name)
	}
}

// OnFail adds a fail listener.
func (q *Queue) OnFail(l FailListener) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.listeners = append(q.listeners, l)
}

// Subject returns the messaging subject carrying jobs named name.
func (q *Queue) Subject(name string) string {
	return q.cfg.Prefix + "." + name
}

// Enqueue publishes a job. data is JSON encoded; nil means no data.
func (q *Queue) Enqueue(ctx context.Context, name string, data any) (Job, error) {
	if q.closed.Load() {
		return Job{}, ErrClosed
	}

	q.mu.RLock()
	_, ok := q.processors[name]
	q.mu.RUnlock()
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	job := Job{Name: name, EnqueuedAt: q.dep.Clock.Now()}
	if q.dep.ID != nil {
		job.ID = q.dep.ID.Generate()
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Job{}, fmt.Errorf("jobqueue: encode %s data: %w", name, err)
		}
		job.Data = raw
	}

	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, err
	}

	msg := messaging.Message{Key: []byte(strconv.FormatInt(job.ID, 10)), Body: body}
	if cid := instrument.GetCorrelationID(ctx); cid != "" {
		msg.Headers = map[string]string{headerCorrelationID: cid}
	}

	if err := q.dep.Messaging.Publish(ctx, q.Subject(name), msg); err != nil {
		return Job{}, fmt.Errorf("jobqueue: publish %s: %w", name, err)
	}

	return job, nil
}

// Listen starts consuming every defined job. It returns immediately.
func (q *Queue) Listen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.closed.Load() {
		return ErrClosed
	}
	if !q.listening.CompareAndSwap(false, true) {
		return ErrAlreadyListening
	}

	q.mu.RLock()
	names := make([]string, 0, len(q.processors))
	for name := range q.processors {
		names = append(names, name)
	}
	q.mu.RUnlock()

	for _, name := range names {
		q.consume(name)
	}

	slog.InfoContext(ctx, "job queue listening", "jobs", names)
	return nil
}

func (q *Queue) consume(name string) {
	q.wg.Go(func() {
		err := q.dep.Messaging.Consume(q.ctx, q.Subject(name), q.handle,
			messaging.WithGroup(q.cfg.Group),
			messaging.WithConcurrency(q.cfg.Concurrency),
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("job consumer stopped", "job", name, "error", err)
		}
	})
}

func (q *Queue) handle(ctx context.Context, msg messaging.Message) error {
	if cid := msg.Header(headerCorrelationID); cid != "" {
		ctx = instrument.SetCorrelationID(ctx, cid)
	}

	var job Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		slog.ErrorContext(ctx, "failed to decode job", "source", msg.Source, "error", err)
		return err
	}

	q.mu.RLock()
	p, ok := q.processors[job.Name]
	q.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownJob, job.Name)
		q.fail(ctx, job, err)
		return err
	}

	if q.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.Timeout)
		defer cancel()
	}

	if err := q.run(ctx, p, job); err != nil {
		q.fail(ctx, job, err)
		return err
	}

	return nil
}

func (q *Queue) run(ctx context.Context, p Processor, job Job) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in job processor", "job", job.Name, "panic", rvr, stacktrace.Attr())
			err = &PanicError{Job: job.Name, Value: rvr}
		}
	}()

	return p(ctx, job)
}

func (q *Queue) fail(ctx context.Context, job Job, err error) {
	slog.ErrorContext(ctx, "job failed", "job", job.Name, "job_id", job.ID, "error", err)

	q.mu.RLock()
	listeners := append([]FailListener(nil), q.listeners...)
	q.mu.RUnlock()

	for _, l := range listeners {
		l(context.WithoutCancel(ctx), job, err)
	}
}

// Every enqueues name once per cadence, starting now.
//
// Replicas share ticks: only the replica acquiring the slot key
// "<prefix>:every:<name>:<slot>" enqueues the job for that slot.
func (q *Queue) Every(ctx context.Context, name, cadence string) error {
	interval, err := ParseCadence(cadence)
	if err != nil {
		return err
	}
	if q.closed.Load() {
		return ErrClosed
	}

	q.mu.RLock()
	_, ok := q.processors[name]
	q.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	q.wg.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			q.tick(ctx, name, interval)

			select {
			case <-q.ctx.Done():
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})

	return nil
}

func (q *Queue) tick(ctx context.Context, name string, interval time.Duration) {
	ctx = context.WithoutCancel(ctx)
	slot := q.dep.Clock.Now().UnixNano() / int64(interval)

	if q.dep.Idempotency != nil {
		key := fmt.Sprintf("%s:every:%s:%d", q.cfg.Prefix, name, slot)
		state, err := q.dep.Idempotency.Acquire(ctx, key, interval)
		if err != nil {
			slog.ErrorContext(ctx, "failed to acquire recurring job slot", "job", name, "error", err)
			return
		}
		if state != idempotency.StateNone {
			slog.DebugContext(ctx, "recurring job slot taken", "job", name, "slot", slot, "state", state)
			return
		}
	}

	if _, err := q.Enqueue(ctx, name, nil); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue recurring job", "job", name, "error", err)
	}
}

// Close stops consumers and recurring ticks and waits for them.
func (q *Queue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}

	q.cancel()
	q.wg.Wait()

	return nil
}

// PanicError reports a processor panic to fail listeners.
type PanicError struct {
	Job   string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job %s panicked: %v", e.Job, e.Value)
}

// Name implements the goerror naming hook.
func (*PanicError) Name() string { return "Panic" }

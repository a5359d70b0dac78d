package completion

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vision-chat/server/internal/infrastructure/metrics"
)

// Dispatcher runs completion tasks on a fixed pool of background workers.
// Dispatch is fire and forget from the caller's point of view; the returned
// handle is an observation point, not an obligation.
type Dispatcher struct {
	orchestrator *Orchestrator
	queue        chan *queuedTask
	workerCount  int
	taskTimeout  time.Duration
	log          zerolog.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

// DispatcherConfig contains worker pool configuration.
type DispatcherConfig struct {
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
}

func NewDispatcher(orchestrator *Orchestrator, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Dispatcher{
		orchestrator: orchestrator,
		queue:        make(chan *queuedTask, cfg.QueueSize),
		workerCount:  cfg.WorkerCount,
		taskTimeout:  cfg.TaskTimeout,
		log:          log.With().Str("component", "completion-dispatcher").Logger(),
		stopChan:     make(chan struct{}),
	}
}

type queuedTask struct {
	ctx    context.Context
	task   Task
	handle *Handle
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	d.log.Info().Int("worker_count", d.workerCount).Msg("starting completion dispatcher")
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i + 1)
	}
}

// Stop signals workers to drain and waits for in-flight tasks.
func (d *Dispatcher) Stop() {
	d.log.Info().Msg("stopping completion dispatcher")
	close(d.stopChan)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info().Msg("completion dispatcher stopped")
	case <-time.After(30 * time.Second):
		d.log.Warn().Msg("completion dispatcher shutdown timed out")
	}
}

// Dispatch enqueues a task and returns its handle immediately. The task runs
// under its own timeout context, detached from the request that spawned it.
// A full queue falls back to a dedicated goroutine rather than blocking the
// caller.
func (d *Dispatcher) Dispatch(task Task) *Handle {
	ctx := context.Background()
	var cancel context.CancelFunc
	if d.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.taskTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	handle := newHandle(uuid.NewString(), cancel)
	qt := &queuedTask{ctx: ctx, task: task, handle: handle}

	select {
	case d.queue <- qt:
	default:
		d.log.Warn().
			Str("task_id", handle.ID).
			Str("chat_id", task.ChatPublicID).
			Msg("completion queue full, running task out of band")
		go d.run(qt)
	}
	return handle
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log := d.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("worker started")

	for {
		select {
		case <-d.stopChan:
			log.Debug().Msg("worker stopping")
			return
		case qt := <-d.queue:
			d.run(qt)
		}
	}
}

func (d *Dispatcher) run(qt *queuedTask) {
	start := time.Now()
	err := d.orchestrator.Execute(qt.ctx, qt.task)
	qt.handle.finish(err)
	qt.handle.cancel()

	status := "success"
	event := d.log.Info()
	if err != nil {
		status = "error"
		event = d.log.Error().Err(err)
	}
	metrics.RecordCompletion(status, time.Since(start).Seconds())
	event.
		Str("task_id", qt.handle.ID).
		Str("chat_id", qt.task.ChatPublicID).
		Str("message_id", qt.task.PlaceholderID).
		Dur("duration", time.Since(start)).
		Msg("completion task finished")
}

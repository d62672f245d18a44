package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/tasks"
)

var (
	ErrWorkerStopped = errors.New("worker stopped")
	// ErrQueueFull is returned instead of blocking the caller. Rows whose
	// task was refused stay non-terminal and are picked up by stale-task
	// recovery.
	ErrQueueFull = errors.New("task queue full")
)

// TaskHandler runs one task addressed by row id.
type TaskHandler func(ctx context.Context, id uint) error

// Worker is a channel-fed pool executing typed tasks. Handlers and periodic
// jobs must be registered before Start.
type Worker interface {
	tasks.Dispatcher
	Handle(kind tasks.Kind, handler TaskHandler)
	Every(name string, interval time.Duration, job func(ctx context.Context))
	Start(ctx context.Context)
	Stop()
}

type periodicJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
}

type worker struct {
	handlers    map[tasks.Kind]TaskHandler
	periodic    []periodicJob
	taskQueue   chan tasks.Task
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	log         *zap.Logger
}

func NewWorker(concurrency, queueSize int, log *zap.Logger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	return &worker{
		handlers:    make(map[tasks.Kind]TaskHandler),
		taskQueue:   make(chan tasks.Task, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		log:         logger.WithFields(log, zap.String("component", "worker")),
	}
}

func (w *worker) Handle(kind tasks.Kind, handler TaskHandler) {
	w.handlers[kind] = handler
}

func (w *worker) Every(name string, interval time.Duration, job func(ctx context.Context)) {
	w.periodic = append(w.periodic, periodicJob{name: name, interval: interval, run: job})
}

// Start implements Worker. ctx is handed to every task; it should not be a
// request context.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.concurrency), zap.Int("queue_size", cap(w.taskQueue)))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i+1)
	}

	for _, job := range w.periodic {
		w.wg.Add(1)
		go w.runPeriodic(ctx, job)
	}
}

// Stop implements Worker. Queued tasks that have not started are dropped.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		if n := len(w.taskQueue); n > 0 {
			w.log.Warn("dropped queued tasks on shutdown", zap.Int("count", n))
		}
		w.log.Info("worker stopped")
	})
}

// Dispatch implements tasks.Dispatcher. It never blocks.
func (w *worker) Dispatch(ctx context.Context, task tasks.Task) error {
	if _, ok := w.handlers[task.Kind]; !ok {
		return fmt.Errorf("no handler for task kind %q", task.Kind)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task, err)
	}

	select {
	case <-w.stopChan:
		return ErrWorkerStopped
	default:
	}

	select {
	case w.taskQueue <- task:
		w.log.Debug("task enqueued", zap.String(logger.FieldTaskKind, string(task.Kind)), zap.Uint("task_id", task.ID))
		return nil
	default:
		w.log.Warn("task queue full", zap.String(logger.FieldTaskKind, string(task.Kind)), zap.Uint("task_id", task.ID))
		return fmt.Errorf("failed to enqueue %s: %w", task, ErrQueueFull)
	}
}

func (w *worker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case task := <-w.taskQueue:
			w.run(ctx, workerID, task)
		}
	}
}

func (w *worker) run(ctx context.Context, workerID int, task tasks.Task) {
	log := w.log.With(
		zap.Int("worker", workerID),
		zap.String(logger.FieldTaskKind, string(task.Kind)),
		zap.Uint("task_id", task.ID),
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("task panicked", zap.Any("panic", rec))
		}
	}()

	handler, ok := w.handlers[task.Kind]
	if !ok {
		log.Error("no handler registered for task")
		return
	}

	start := time.Now()
	if err := handler(ctx, task.ID); err != nil {
		log.Warn("task failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	log.Info("task completed", zap.Duration("elapsed", time.Since(start)))
}

func (w *worker) runPeriodic(ctx context.Context, job periodicJob) {
	defer w.wg.Done()
	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						w.log.Error("periodic job panicked", zap.String("job", job.name), zap.Any("panic", rec))
					}
				}()
				job.run(ctx)
			}()
		}
	}
}

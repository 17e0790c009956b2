package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool runs a fixed number of goroutines that drain a task queue.
// It handles graceful shutdown and recovers from panicking tasks so one bad
// task cannot take down a worker.
type WorkerPool struct {
	taskQueue   TaskQueueReader
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	// errorHandler is called when a task execution fails. Nil means errors
	// are only logged.
	errorHandler func(task Task, err error)
}

// NewWorkerPool creates a worker pool reading from the given queue. A
// worker count below one falls back to a single worker.
func NewWorkerPool(taskQueue TaskQueueReader, workerCount int, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	if workerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", workerCount,
			"default_count", 1)
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With(slog.String("component", "worker_pool")),
	}
}

// SetErrorHandler installs a callback invoked when a task execution fails.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. It returns immediately; workers run
// until the queue channel closes or Stop is called.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals all workers to finish and blocks until they have exited.
// Tasks already picked up are allowed to observe the cancellation through
// their context.
func (p *WorkerPool) Stop() {
	p.logger.Info("stopping worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Wait blocks until all workers have exited, which happens after the queue
// channel is closed and drained.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(index int) {
	defer p.wg.Done()
	log := p.logger.With(slog.Int("worker", index))
	log.Debug("worker started")

	for {
		select {
		case <-p.ctx.Done():
			log.Debug("worker stopping: pool cancelled")
			return
		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				log.Debug("worker stopping: queue closed")
				return
			}
			p.runTask(log, task)
		}
	}
}

// runTask executes one task, recovering from panics so the worker survives.
func (p *WorkerPool) runTask(log *slog.Logger, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"panic", r)
		}
	}()

	log.Debug("executing task",
		"task_id", task.ID(),
		"task_type", task.Type())

	if err := task.Execute(p.ctx); err != nil {
		log.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	log.Debug("task completed",
		"task_id", task.ID(),
		"task_type", task.Type())
}

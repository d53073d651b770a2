package taskmanager

import (
	"context"
	"log/slog"
	"sync"
)

// poolTask is one unit of work queued on the pool. The run function carries
// all task state via closure; the pool itself knows nothing about records.
type poolTask struct {
	name string
	run  func(ctx context.Context)
}

// workerPool executes queued tasks on a fixed set of goroutines. The queue is
// unbounded so that enqueueing never blocks the submitter; backpressure is
// not this layer's concern. A pool is built, drained, and discarded as a
// unit; the Manager replaces the whole pool when its restart threshold is
// reached.
type workerPool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []poolTask
	closed bool

	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// newWorkerPool creates a pool and starts its workers immediately.
func newWorkerPool(workers int, logger *slog.Logger) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())

	p := &workerPool{
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// enqueue adds a task to the queue. It returns false if the pool has already
// been stopped, in which case the task will never run.
func (p *workerPool) enqueue(t poolTask) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	p.queue = append(p.queue, t)
	p.cond.Signal()
	return true
}

// stop closes the pool to new work. Workers finish draining the queue and
// exit; when wait is true, stop blocks until they have.
func (p *workerPool) stop(wait bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if wait {
			p.wg.Wait()
		}
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	if wait {
		p.wg.Wait()
	}
	p.cancel()
}

// worker pops tasks in FIFO order until the pool is closed and the queue is
// empty.
func (p *workerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("worker started", slog.Int("worker_id", id))

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// Closed and drained.
			p.mu.Unlock()
			p.logger.Debug("worker stopping", slog.Int("worker_id", id))
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		task.run(p.ctx)
	}
}

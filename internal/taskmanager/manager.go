package taskmanager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskFunc is the signature of a submitted callable. The context is the
// worker pool's context and is cancelled when the facility shuts down without
// waiting; cancellation is cooperative and a callable is free to ignore it.
type TaskFunc func(ctx context.Context, args ...any) (any, error)

// Config holds the Manager's tuning knobs. All three counters must be
// positive; New rejects anything else.
type Config struct {
	// MaxWorkers is the fixed number of worker goroutines.
	MaxWorkers int

	// MaxTaskHistory caps how many task records are retained.
	MaxTaskHistory int

	// RestartThreshold is the number of submissions after which the worker
	// pool is drained and rebuilt, bounding long-run resource growth.
	RestartThreshold int

	// MaxRecordAge is how long terminal records stay queryable before the
	// sweeper removes them. Zero means DefaultMaxRecordAge.
	MaxRecordAge time.Duration
}

// DefaultMaxRecordAge is the retention age applied when Config.MaxRecordAge
// is zero.
const DefaultMaxRecordAge = time.Hour

// DefaultConfig returns a Config with reasonable defaults for a long-running
// server process.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:       5,
		MaxTaskHistory:   1000,
		RestartThreshold: 200,
		MaxRecordAge:     DefaultMaxRecordAge,
	}
}

func (c Config) validate() error {
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("%w: max_workers must be positive, got %d", ErrInvalidConfig, c.MaxWorkers)
	}
	if c.MaxTaskHistory <= 0 {
		return fmt.Errorf("%w: max_task_history must be positive, got %d", ErrInvalidConfig, c.MaxTaskHistory)
	}
	if c.RestartThreshold <= 0 {
		return fmt.Errorf("%w: restart_threshold must be positive, got %d", ErrInvalidConfig, c.RestartThreshold)
	}
	return nil
}

// Stats is a point-in-time snapshot of the Manager's pool bookkeeping.
type Stats struct {
	// PoolGeneration counts how many times the worker pool has been built,
	// starting at 1.
	PoolGeneration int `json:"pool_generation"`

	// ExecutedSinceRestart is the number of submissions dispatched since
	// the pool was last built.
	ExecutedSinceRestart int `json:"executed_since_restart"`

	// Workers is the configured pool size.
	Workers int `json:"workers"`
}

// taskState pairs a record with the handle owned by its registry entry.
type taskState struct {
	rec    Record
	handle *Handle
}

// Manager runs named background tasks on a fixed worker pool, deduplicating
// live submissions by name and retaining a bounded history of terminal
// records. Construct one Manager at process start and inject it into every
// caller that needs it.
//
// A single coarse mutex guards the record registry; it is never held while a
// user callable runs. A second mutex serializes submission against pool
// restart so that no task can be submitted mid-rebuild.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	// submitMu makes Submit, pool restart, and Shutdown mutually exclusive.
	submitMu sync.Mutex

	// mu guards everything below.
	mu         sync.Mutex
	records    map[string]*taskState
	order      []string // insertion order of record names, oldest first
	executed   int
	generation int
	closed     bool
	onFinish   func(Record)

	pool *workerPool
}

// New creates a Manager and starts its worker pool. The configuration is
// validated eagerly. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MaxRecordAge <= 0 {
		cfg.MaxRecordAge = DefaultMaxRecordAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_manager"))

	return &Manager{
		cfg:        cfg,
		logger:     logger,
		records:    make(map[string]*taskState),
		generation: 1,
		pool:       newWorkerPool(cfg.MaxWorkers, logger),
	}, nil
}

// SetCompletionHandler registers a callback invoked with a snapshot of the
// record each time a task reaches a terminal state. Set it during wiring,
// before tasks are submitted. The callback runs outside the registry lock.
func (m *Manager) SetCompletionHandler(fn func(Record)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFinish = fn
}

// Submit schedules fn to run under the given task name and returns a handle
// to its eventual result. If a task with the same name is already pending or
// running, the existing handle is returned and no new execution starts.
// Submit never blocks on the work itself.
func (m *Manager) Submit(name string, fn TaskFunc, args ...any) (*Handle, error) {
	if name == "" {
		return nil, ErrEmptyTaskName
	}
	if fn == nil {
		return nil, ErrNilTaskFunc
	}

	m.submitMu.Lock()
	defer m.submitMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerShutdown
	}
	if st, ok := m.records[name]; ok && !st.rec.Status.Terminal() {
		h := st.handle
		status := st.rec.Status
		m.mu.Unlock()
		m.logger.Warn("task already live, returning existing handle",
			slog.String("task", name),
			slog.String("status", string(status)))
		return h, nil
	}
	needRestart := m.executed >= m.cfg.RestartThreshold
	m.mu.Unlock()

	if needRestart {
		m.restartPool()
	}

	m.sweep()

	h := newHandle(name)
	st := &taskState{
		rec: Record{
			Name:         name,
			Status:       StatusPending,
			StartTime:    time.Now(),
			ArgsSnapshot: snapshotArgs(args),
		},
		handle: h,
	}

	m.mu.Lock()
	if _, ok := m.records[name]; ok {
		// Replacing a terminal record counts as a fresh insertion.
		m.removeFromOrder(name)
	}
	m.records[name] = st
	m.order = append(m.order, name)
	m.executed++
	executed := m.executed
	m.mu.Unlock()

	if !m.pool.enqueue(poolTask{name: name, run: m.execute(name, h, fn, args)}) {
		// Only reachable if the pool was stopped out from under us, which
		// Shutdown's locking prevents. Fail the record rather than leave it
		// pending forever.
		m.mu.Lock()
		st.rec.Status = StatusCancelled
		st.rec.FinishTime = time.Now()
		m.mu.Unlock()
		h.complete(nil, ErrManagerShutdown)
		return nil, ErrManagerShutdown
	}

	m.logger.Debug("task submitted",
		slog.String("task", name),
		slog.Int("executed_since_restart", executed))

	return h, nil
}

// execute builds the wrapped callable the pool runs for one submission.
func (m *Manager) execute(name string, h *Handle, fn TaskFunc, args []any) func(ctx context.Context) {
	return func(ctx context.Context) {
		m.mu.Lock()
		st, ok := m.records[name]
		if !ok || st.handle != h || st.rec.Status != StatusPending {
			// Cancelled before start, or superseded.
			m.mu.Unlock()
			return
		}
		st.rec.Status = StatusRunning
		m.mu.Unlock()

		// The callable runs entirely outside the registry lock.
		result, err := runProtected(fn, ctx, args)

		var snapshot Record
		m.mu.Lock()
		if cur, live := m.records[name]; live && cur.handle == h {
			now := time.Now()
			if err != nil {
				cur.rec.Status = StatusFailed
				cur.rec.Error = err.Error()
			} else {
				cur.rec.Status = StatusCompleted
				cur.rec.Result = result
			}
			cur.rec.FinishTime = now
			snapshot = cur.rec
		}
		onFinish := m.onFinish
		m.mu.Unlock()

		if err != nil {
			m.logger.Error("task failed",
				slog.String("task", name),
				slog.String("error", err.Error()))
			h.complete(nil, &ExecutionError{TaskName: name, Err: err})
		} else {
			h.complete(result, nil)
		}

		if onFinish != nil && snapshot.Name != "" {
			onFinish(snapshot)
		}

		m.sweep()
	}
}

// runProtected invokes the callable and converts a panic into an error so a
// misbehaving task can never take down a worker.
func runProtected(fn TaskFunc, ctx context.Context, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, args...)
}

// restartPool drains the current worker pool and builds a fresh one. Caller
// must hold submitMu; the registry lock is not held while draining, so
// in-flight tasks can record their terminal transitions.
func (m *Manager) restartPool() {
	m.mu.Lock()
	executed := m.executed
	m.mu.Unlock()

	m.logger.Info("restarting worker pool",
		slog.Int("executed_since_restart", executed))

	m.pool.stop(true)

	pool := newWorkerPool(m.cfg.MaxWorkers, m.logger)

	m.mu.Lock()
	m.pool = pool
	m.executed = 0
	m.generation++
	m.mu.Unlock()

	m.logger.Info("worker pool restarted")
}

// GetTaskStatus returns a copy of the named task's record. The boolean is
// false when no record is known under that name.
func (m *Manager) GetTaskStatus(name string) (Record, bool) {
	if name == "" {
		return Record{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.records[name]
	if !ok {
		return Record{}, false
	}
	return st.rec, true
}

// ListTasks returns a snapshot of all records, keyed by task name. A
// non-empty status restricts the result to records in that state.
func (m *Manager) ListTasks(status Status) map[string]Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Record)
	for name, st := range m.records {
		if status != "" && st.rec.Status != status {
			continue
		}
		out[name] = st.rec
	}
	return out
}

// UpdateProgress sets the named task's progress percentage. It returns true
// only when the name is known and percent is within [0,100]; out-of-range
// values and unknown names report false without failing.
func (m *Manager) UpdateProgress(name string, percent int) bool {
	if name == "" || percent < 0 || percent > 100 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.records[name]
	if !ok {
		return false
	}
	st.rec.Progress = percent
	return true
}

// CancelTask cancels the named task if it has not yet started. Running and
// terminal tasks report false; cancellation is best-effort only, never
// preemptive.
func (m *Manager) CancelTask(name string) bool {
	if name == "" {
		return false
	}

	m.mu.Lock()
	st, ok := m.records[name]
	if !ok || st.rec.Status != StatusPending {
		m.mu.Unlock()
		return false
	}
	st.rec.Status = StatusCancelled
	st.rec.FinishTime = time.Now()
	snapshot := st.rec
	h := st.handle
	onFinish := m.onFinish
	m.mu.Unlock()

	h.complete(nil, ErrTaskCancelled)
	m.logger.Info("task cancelled", slog.String("task", name))

	if onFinish != nil {
		onFinish(snapshot)
	}
	return true
}

// TaskCount returns the number of retained records, restricted to one status
// when status is non-empty.
func (m *Manager) TaskCount(status Status) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if status == "" {
		return len(m.records)
	}
	n := 0
	for _, st := range m.records {
		if st.rec.Status == status {
			n++
		}
	}
	return n
}

// RunningTasks returns the names of running tasks in submission order.
func (m *Manager) RunningTasks() []string {
	return m.tasksInStatus(StatusRunning)
}

// PendingTasks returns the names of pending tasks in submission order.
func (m *Manager) PendingTasks() []string {
	return m.tasksInStatus(StatusPending)
}

func (m *Manager) tasksInStatus(status Status) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0)
	for _, name := range m.order {
		if st, ok := m.records[name]; ok && st.rec.Status == status {
			names = append(names, name)
		}
	}
	return names
}

// ClearCompletedTasks removes all completed and failed records and returns
// how many were removed.
func (m *Manager) ClearCompletedTasks() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for name, st := range m.records {
		if st.rec.Status == StatusCompleted || st.rec.Status == StatusFailed {
			delete(m.records, name)
			m.removeFromOrder(name)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the pool bookkeeping.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		PoolGeneration:       m.generation,
		ExecutedSinceRestart: m.executed,
		Workers:              m.cfg.MaxWorkers,
	}
}

// Shutdown stops the facility. New submissions fail with ErrManagerShutdown,
// still-pending tasks are cancelled, and when wait is true Shutdown blocks
// until in-flight work drains. It is idempotent.
func (m *Manager) Shutdown(wait bool) {
	m.submitMu.Lock()

	m.mu.Lock()
	already := m.closed
	m.closed = true

	var cancelled []*taskState
	if !already {
		for _, name := range m.order {
			st, ok := m.records[name]
			if !ok || st.rec.Status != StatusPending {
				continue
			}
			st.rec.Status = StatusCancelled
			st.rec.FinishTime = time.Now()
			cancelled = append(cancelled, st)
		}
	}
	onFinish := m.onFinish
	pool := m.pool
	m.mu.Unlock()
	m.submitMu.Unlock()

	for _, st := range cancelled {
		st.handle.complete(nil, ErrTaskCancelled)
		if onFinish != nil {
			onFinish(st.rec)
		}
	}

	pool.stop(wait)

	if !already {
		m.logger.Info("task manager shut down", slog.Bool("waited", wait))
	}
}

// Close shuts the Manager down, waiting for in-flight work, so a Manager can
// be scoped with defer. It always returns nil.
func (m *Manager) Close() error {
	m.Shutdown(true)
	return nil
}

// sweep applies the retention policy: terminal records older than
// MaxRecordAge go first, then the oldest evictable records until the history
// cap is satisfied. Live records are never evicted. A sweep failure is
// logged, never propagated to the submitter.
func (m *Manager) sweep() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("retention sweep failed", slog.Any("panic", r))
		}
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	// Age pass: completed and failed records past the retention age.
	for name, st := range m.records {
		if st.rec.Status != StatusCompleted && st.rec.Status != StatusFailed {
			continue
		}
		if !st.rec.FinishTime.IsZero() && now.Sub(st.rec.FinishTime) > m.cfg.MaxRecordAge {
			delete(m.records, name)
			m.removeFromOrder(name)
		}
	}

	// Count pass: evict oldest terminal records until under the cap.
	if len(m.records) <= m.cfg.MaxTaskHistory {
		return
	}
	for _, name := range append([]string(nil), m.order...) {
		if len(m.records) <= m.cfg.MaxTaskHistory {
			break
		}
		st, ok := m.records[name]
		if !ok || !st.rec.Status.Terminal() {
			continue
		}
		delete(m.records, name)
		m.removeFromOrder(name)
	}
}

// removeFromOrder drops one name from the insertion-order slice. Caller must
// hold mu.
func (m *Manager) removeFromOrder(name string) {
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func snapshotArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprintf("%v", args)
}

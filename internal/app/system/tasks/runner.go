// Package tasks schedules the server's periodic maintenance: refreshing the
// cached folder tree and pruning data left behind by idle viewers.
package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds each run; zero leaves a run bounded only by Stop.
	Timeout time.Duration
	// SkipInitial waits one Interval before the first run.
	SkipInitial bool
	Run         func(ctx context.Context) error
}

// Runner owns one goroutine per registered job.
type Runner struct {
	logger *zap.Logger
	jobs   []Job
	stop   context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[string]int
}

// New returns an empty Runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{logger: logger, active: make(map[string]int)}
}

// Register adds job. It must be called before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Jobs lists registered job names in registration order.
func (r *Runner) Jobs() []string {
	out := make([]string, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Name)
	}
	return out
}

// Start launches every registered job.
func (r *Runner) Start() {
	ctx, stop := context.WithCancel(context.Background())
	r.stop = stop
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.schedule(ctx, job)
	}
	r.logger.Info("task runner started", zap.Strings("jobs", r.Jobs()))
}

// Stop cancels running jobs and waits for them to return. If ctx expires
// first, Stop logs the jobs still busy and returns ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.stop != nil {
		r.stop()
	}
	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("task runner stop timed out", zap.Strings("busy", r.busy()))
		return ctx.Err()
	}
}

// RunOnce runs the named job on the calling goroutine, honoring its Timeout.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return runBounded(ctx, job)
		}
	}
	return ErrUnknownJob
}

func (r *Runner) schedule(ctx context.Context, job Job) {
	defer r.wg.Done()

	wait := time.Duration(0)
	if job.SkipInitial {
		wait = job.Interval
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.runLogged(ctx, job)
			timer.Reset(job.Interval)
		}
	}
}

func (r *Runner) runLogged(ctx context.Context, job Job) {
	r.track(job.Name, 1)
	defer r.track(job.Name, -1)

	started := time.Now()
	err := runBounded(ctx, job)
	fields := []zap.Field{zap.String("job", job.Name), zap.Duration("took", time.Since(started))}
	switch {
	case err == nil:
		r.logger.Debug("job done", fields...)
	case ctx.Err() != nil:
		r.logger.Debug("job interrupted by shutdown", fields...)
	default:
		r.logger.Error("job failed", append(fields, zap.Error(err))...)
	}
}

func runBounded(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	return job.Run(ctx)
}

func (r *Runner) track(name string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[name] += delta
	if r.active[name] <= 0 {
		delete(r.active, name)
	}
}

func (r *Runner) busy() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

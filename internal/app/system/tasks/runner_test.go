package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/tasks"
	"go.uber.org/zap"
)

func stopWithin(t *testing.T, r *tasks.Runner, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Stop(ctx)
}

func countingJob(name string, interval time.Duration, n *atomic.Int32) tasks.Job {
	return tasks.Job{
		Name:     name,
		Interval: interval,
		Run: func(context.Context) error {
			n.Add(1)
			return nil
		},
	}
}

func TestRunner_RunsImmediatelyThenOnInterval(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var refreshes, prunes atomic.Int32
	r.Register(countingJob("refresh", 20*time.Millisecond, &refreshes))
	r.Register(countingJob("prune", time.Hour, &prunes))

	r.Start()
	time.Sleep(90 * time.Millisecond)
	if err := stopWithin(t, r, 2*time.Second); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	if refreshes.Load() < 2 {
		t.Errorf("refresh ran %d times, want repeated runs", refreshes.Load())
	}
	if prunes.Load() != 1 {
		t.Errorf("prune ran %d times, want only the initial run", prunes.Load())
	}
}

func TestRunner_StopCancelsJobContext(t *testing.T) {
	r := tasks.New(zap.NewNop())
	saw := make(chan error, 1)
	r.Register(tasks.Job{
		Name:     "waits",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			saw <- ctx.Err()
			return ctx.Err()
		},
	})

	r.Start()
	time.Sleep(20 * time.Millisecond)
	if err := stopWithin(t, r, 2*time.Second); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	select {
	case err := <-saw:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("job saw %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("job context was never cancelled")
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	r := tasks.New(zap.NewNop())
	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	r.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(context.Context) error {
			close(entered)
			<-release
			return nil
		},
	})

	r.Start()
	<-entered
	if err := stopWithin(t, r, 50*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop() = %v, want DeadlineExceeded", err)
	}
}

func TestRunner_SkipInitialWaitsForInterval(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var runs atomic.Int32
	job := countingJob("later", time.Hour, &runs)
	job.SkipInitial = true
	r.Register(job)

	r.Start()
	time.Sleep(30 * time.Millisecond)
	if err := stopWithin(t, r, time.Second); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if runs.Load() != 0 {
		t.Errorf("job ran %d times before its first interval", runs.Load())
	}
	if got := r.Jobs(); len(got) != 1 || got[0] != "later" {
		t.Errorf("Jobs() = %v", got)
	}
}

func TestRunner_RunOnce(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var runs atomic.Int32
	r.Register(countingJob(tasks.FolderTreeRefresh, time.Hour, &runs))
	r.Register(tasks.Job{
		Name:     "bounded",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	tests := []struct {
		name    string
		job     string
		wantErr error
	}{
		{"registered", tasks.FolderTreeRefresh, nil},
		{"timeout applies", "bounded", context.DeadlineExceeded},
		{"unknown", "nope", tasks.ErrUnknownJob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.RunOnce(context.Background(), tt.job)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RunOnce(%q) = %v, want %v", tt.job, err, tt.wantErr)
			}
		})
	}
	if runs.Load() != 1 {
		t.Errorf("refresh ran %d times, want 1", runs.Load())
	}
}

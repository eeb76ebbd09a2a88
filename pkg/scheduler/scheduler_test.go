package scheduler

import (
	"context"
	"testing"
	"time"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s, err := NewScheduler(context.Background())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestAddCronRejectsDuplicate(t *testing.T) {
	s := newTestScheduler(t)

	noop := func(ctx context.Context, triggeredBy string) {}

	if err := s.AddCron("cleanup", "0 * * * *", noop); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.AddCron("cleanup", "0 * * * *", noop); err == nil {
		t.Error("duplicate registration should fail")
	}

	if !s.Has("cleanup") {
		t.Error("job should be registered")
	}
}

func TestPauseResume(t *testing.T) {
	s := newTestScheduler(t)

	if err := s.Pause("missing"); err == nil {
		t.Error("pause of unknown job should fail")
	}

	if err := s.AddCron("check", "0 * * * *", func(ctx context.Context, triggeredBy string) {}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.Pause("check"); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if !s.IsPaused("check") {
		t.Error("job should be paused")
	}

	if err := s.Resume("check"); err != nil {
		t.Fatalf("resume: %v", err)
	}

	if s.IsPaused("check") {
		t.Error("job should be resumed")
	}
}

func TestTriggerBypassesPause(t *testing.T) {
	s := newTestScheduler(t)

	ran := make(chan string, 1)

	err := s.AddCron("purge", "0 2 * * *", func(ctx context.Context, triggeredBy string) {
		ran <- triggeredBy
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.Pause("purge"); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if err := s.Trigger("purge"); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	select {
	case by := <-ran:
		if by != "manual" {
			t.Errorf("triggered_by = %q, want manual", by)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("paused job did not run on manual trigger")
	}

	if err := s.Trigger("missing"); err == nil {
		t.Error("trigger of unknown job should fail")
	}
}

func TestStatusCountsPaused(t *testing.T) {
	s := newTestScheduler(t)

	noop := func(ctx context.Context, triggeredBy string) {}

	for _, name := range []string{"a", "b", "c"} {
		if err := s.AddCron(name, "0 * * * *", noop); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	if err := s.Pause("b"); err != nil {
		t.Fatalf("pause: %v", err)
	}

	running, total, paused, _ := s.Status()
	if running {
		t.Error("scheduler not started yet")
	}

	if total != 3 || paused != 1 {
		t.Errorf("total/paused = %d/%d, want 3/1", total, paused)
	}

	if got := len(s.ListJobs()); got != 3 {
		t.Errorf("list = %d jobs, want 3", got)
	}

	s.Start()

	if running, _, _, _ := s.Status(); !running {
		t.Error("scheduler should report running after start")
	}
}

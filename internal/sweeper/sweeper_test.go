package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	appsession "arcade-tournament/internal/app/session"
)

type countingSessions struct {
	calls atomic.Int32
	err   error
}

func (c *countingSessions) GetOrCreateActive(context.Context) (*appsession.SessionView, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &appsession.SessionView{ID: "s1", TimeLeft: 60}, nil
}

func waitForCalls(t *testing.T, c *countingSessions, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.calls.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("calls = %d, want >= %d", c.calls.Load(), want)
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	sessions := &countingSessions{}
	s, err := New(sessions, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	waitForCalls(t, sessions, 3)
}

func TestSweeperKeepsRunningAfterErrors(t *testing.T) {
	sessions := &countingSessions{err: errors.New("storage_error")}
	s, err := New(sessions, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	waitForCalls(t, sessions, 2)
}

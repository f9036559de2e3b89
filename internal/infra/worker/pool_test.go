//go:build !integration

package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, 8, time.Second, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var ran int32
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		ok := p.Submit("count", func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			done <- struct{}{}
			return nil
		})
		if !ok {
			t.Fatal("expected task to be accepted")
		}
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	if atomic.LoadInt32(&ran) != 3 {
		t.Errorf("expected 3 runs, got %d", ran)
	}
	p.Stop()
}

func TestPool_DropsWhenFull(t *testing.T) {
	// not started: nothing consumes the queue
	p := NewPool(1, 1, time.Second, newTestLogger())
	if !p.Submit("first", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected first task to be queued")
	}
	if p.Submit("second", func(ctx context.Context) error { return nil }) {
		t.Error("expected second task to be dropped")
	}
	if p.Submit("nil", nil) {
		t.Error("expected nil task to be rejected")
	}
}

func TestPool_SurvivesFailingAndPanickingTasks(t *testing.T) {
	p := NewPool(1, 4, time.Second, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	done := make(chan struct{})
	p.Submit("fails", func(ctx context.Context) error { return errors.New("boom") })
	p.Submit("panics", func(ctx context.Context) error { panic("boom") })
	p.Submit("after", func(ctx context.Context) error { close(done); return nil })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive failing tasks")
	}
	p.Stop()
}

func TestPool_StopDrainsQueue(t *testing.T) {
	p := NewPool(1, 4, time.Second, newTestLogger())
	var ran int32
	for i := 0; i < 3; i++ {
		p.Submit("queued", func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return nil })
	}
	p.Start(context.Background())
	p.Stop()
	if atomic.LoadInt32(&ran) != 3 {
		t.Errorf("expected queued tasks to run before stop returns, got %d", ran)
	}
}

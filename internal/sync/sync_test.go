package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trueframework/true-board/internal/evaluation"
)

type fakeReconciler struct {
	mu        stdsync.Mutex
	runs      int
	err       error
	replaced  [][]*evaluation.Evaluation
	runSignal chan struct{}
}

func (f *fakeReconciler) ReconcileWithRemote(ctx context.Context) (evaluation.MergeStats, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.runSignal != nil {
		select {
		case f.runSignal <- struct{}{}:
		default:
		}
	}
	return evaluation.MergeStats{FromRemote: 1}, f.err
}

func (f *fakeReconciler) ReplaceFromRemote(ctx context.Context, evals []*evaluation.Evaluation) {
	f.mu.Lock()
	f.replaced = append(f.replaced, evals)
	f.mu.Unlock()
}

func (f *fakeReconciler) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type fakeSubscriber struct {
	err          error
	onChange     func([]*evaluation.Evaluation)
	unsubscribed bool
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, onChange func([]*evaluation.Evaluation)) error {
	if f.err != nil {
		return f.err
	}
	f.onChange = onChange
	return nil
}

func (f *fakeSubscriber) Unsubscribe() {
	f.unsubscribed = true
}

func TestScheduler_RunsImmediatelyAndOnTicks(t *testing.T) {
	reconciler := &fakeReconciler{runSignal: make(chan struct{}, 10)}
	scheduler := NewScheduler(reconciler, nil, Config{Interval: 20 * time.Millisecond}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Start(ctx)
	}()

	// First pass plus at least one tick
	for i := 0; i < 2; i++ {
		select {
		case <-reconciler.runSignal:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a sync pass")
		}
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() = %v, want context.Canceled", err)
	}
	if reconciler.runCount() < 2 {
		t.Errorf("run count = %d, want at least 2", reconciler.runCount())
	}
}

func TestScheduler_SurvivesFailedPasses(t *testing.T) {
	reconciler := &fakeReconciler{err: errors.New("remote down"), runSignal: make(chan struct{}, 10)}
	scheduler := NewScheduler(reconciler, nil, Config{Interval: 10 * time.Millisecond}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-reconciler.runSignal:
		case <-time.After(2 * time.Second):
			t.Fatal("loop stopped after a failure")
		}
	}
}

func TestScheduler_Stop(t *testing.T) {
	reconciler := &fakeReconciler{}
	scheduler := NewScheduler(reconciler, nil, Config{Interval: time.Hour}, nil, nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Start(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	scheduler.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() after Stop = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestScheduler_AppliesRemotePushes(t *testing.T) {
	reconciler := &fakeReconciler{}
	subscriber := &fakeSubscriber{}
	scheduler := NewScheduler(reconciler, subscriber, Config{Interval: time.Hour}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Start(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for subscriber.onChange == nil {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	pushed := []*evaluation.Evaluation{{ID: "x", ModelName: "pushed"}}
	subscriber.onChange(pushed)

	reconciler.mu.Lock()
	replacedCount := len(reconciler.replaced)
	reconciler.mu.Unlock()
	if replacedCount != 1 {
		t.Errorf("ReplaceFromRemote calls = %d, want 1", replacedCount)
	}

	cancel()
	<-errCh
	if !subscriber.unsubscribed {
		t.Error("scheduler should unsubscribe on shutdown")
	}
}

func TestScheduler_DebouncesRemotePushes(t *testing.T) {
	reconciler := &fakeReconciler{}
	subscriber := &fakeSubscriber{}
	scheduler := NewScheduler(reconciler, subscriber,
		Config{Interval: time.Hour, SaveDebounce: 20 * time.Millisecond}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for subscriber.onChange == nil {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A burst of pushes collapses into one apply of the latest snapshot
	subscriber.onChange([]*evaluation.Evaluation{{ID: "first"}})
	subscriber.onChange([]*evaluation.Evaluation{{ID: "second"}})
	subscriber.onChange([]*evaluation.Evaluation{{ID: "last"}})

	deadline = time.Now().Add(2 * time.Second)
	for {
		reconciler.mu.Lock()
		n := len(reconciler.replaced)
		reconciler.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced push never applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(50 * time.Millisecond)
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	if len(reconciler.replaced) != 1 {
		t.Fatalf("applies = %d, want 1", len(reconciler.replaced))
	}
	if got := reconciler.replaced[0][0].ID; got != "last" {
		t.Errorf("applied snapshot = %s, want last", got)
	}
}

func TestScheduler_SubscribeFailureIsNotFatal(t *testing.T) {
	reconciler := &fakeReconciler{runSignal: make(chan struct{}, 1)}
	subscriber := &fakeSubscriber{err: errors.New("pubsub unavailable")}
	scheduler := NewScheduler(reconciler, subscriber, Config{Interval: time.Hour}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Start(ctx)

	select {
	case <-reconciler.runSignal:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic loop should still run without a subscription")
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var calls atomic.Int64
	debouncer := NewDebouncer(30*time.Millisecond, func() {
		calls.Add(1)
	})

	for i := 0; i < 5; i++ {
		debouncer.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("debounced call never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Quiet period with no triggers must not fire again
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var calls atomic.Int64
	debouncer := NewDebouncer(time.Hour, func() {
		calls.Add(1)
	})

	debouncer.Trigger()
	debouncer.Flush()

	if got := calls.Load(); got != 1 {
		t.Errorf("calls after Flush = %d, want 1", got)
	}

	// Nothing pending: Flush is a no-op
	debouncer.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("calls after second Flush = %d, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int64
	debouncer := NewDebouncer(10*time.Millisecond, func() {
		calls.Add(1)
	})

	debouncer.Trigger()
	debouncer.Stop()
	debouncer.Trigger()

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls after Stop = %d, want 0", got)
	}
}

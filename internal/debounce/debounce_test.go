package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	ch     chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 16)}
}

func (r *recorder) settle(v string) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.ch <- v
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

func TestStabilizerEmitsLastValue(t *testing.T) {
	rec := newRecorder()
	s := New("", rec.settle)
	defer s.Stop()

	s.Observe("l", 30*time.Millisecond)
	s.Observe("la", 30*time.Millisecond)
	s.Observe("lam", 30*time.Millisecond)
	s.Observe("lamp", 30*time.Millisecond)

	select {
	case v := <-rec.ch:
		if v != "lamp" {
			t.Errorf("expected lamp, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for settle")
	}

	// Give any stray timers a chance to fire.
	time.Sleep(60 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("expected exactly one emission, got %d", rec.count())
	}
	if s.Value() != "lamp" {
		t.Errorf("Value() = %q, want lamp", s.Value())
	}
}

func TestStabilizerHoldsValueWhilePending(t *testing.T) {
	s := New("initial", nil)
	defer s.Stop()

	s.Observe("next", time.Hour)

	if s.Value() != "initial" {
		t.Errorf("value should not change before delay, got %q", s.Value())
	}
	if !s.Pending() {
		t.Error("expected a pending emission")
	}
}

func TestStabilizerRestartsTimer(t *testing.T) {
	rec := newRecorder()
	s := New("", rec.settle)
	defer s.Stop()

	s.Observe("a", 40*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	s.Observe("b", 40*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	// 45ms after "a" but only 25ms after "b": nothing settled yet.
	if rec.count() != 0 {
		t.Fatalf("timer was not restarted, got %d emissions", rec.count())
	}

	select {
	case v := <-rec.ch:
		if v != "b" {
			t.Errorf("expected b, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for settle")
	}
}

func TestStabilizerZeroDelaySettlesImmediately(t *testing.T) {
	rec := newRecorder()
	s := New("", rec.settle)
	defer s.Stop()

	s.Observe("now", 0)

	if s.Value() != "now" {
		t.Errorf("expected now, got %q", s.Value())
	}
	if rec.count() != 1 {
		t.Errorf("expected one emission, got %d", rec.count())
	}
}

func TestStabilizerSkipsUnchangedValue(t *testing.T) {
	rec := newRecorder()
	s := New("same", rec.settle)
	defer s.Stop()

	s.Observe("same", 0)

	if rec.count() != 0 {
		t.Errorf("unchanged value should not notify, got %d", rec.count())
	}
}

func TestStabilizerStopCancelsPending(t *testing.T) {
	rec := newRecorder()
	s := New("", rec.settle)

	s.Observe("x", 20*time.Millisecond)
	s.Stop()

	if s.Pending() {
		t.Error("Stop should release the timer")
	}

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("no emission expected after Stop, got %d", rec.count())
	}

	s.Observe("y", 0)
	if s.Value() != "" {
		t.Errorf("Observe after Stop should be ignored, got %q", s.Value())
	}

	s.Stop() // idempotent
}

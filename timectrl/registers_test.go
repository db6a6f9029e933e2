package timectrl

import (
	"testing"
	"time"
)

func TestSubpulseLimitKeepsMinimum(t *testing.T) {
	l := NewSubpulseLimit()
	if got := l.Current(); got != Unbounded {
		t.Fatalf("fresh limit = %d, want Unbounded", got)
	}

	l.Request(300)
	l.Request(60)
	l.Request(900) // may not extend what another processor already asked for
	if got := l.Current(); got != 60 {
		t.Fatalf("Current() = %d, want 60", got)
	}

	l.Reset()
	if got := l.Current(); got != Unbounded {
		t.Fatalf("after Reset, Current() = %d, want Unbounded", got)
	}
}

func TestSubpulseLimitIgnoresNonPositiveRequests(t *testing.T) {
	l := NewSubpulseLimit()
	l.Request(0)
	l.Request(-5)
	if got := l.Current(); got != Unbounded {
		t.Fatalf("Current() = %d, want Unbounded", got)
	}
}

func TestInterruptFirstRaiserWins(t *testing.T) {
	i := NewInterrupt()
	if i.IsSet() {
		t.Fatal("fresh interrupt should not be set")
	}

	if !i.Raise(InterruptReason{Code: "a"}) {
		t.Fatal("first raise should be accepted")
	}
	if i.Raise(InterruptReason{Code: "b"}) {
		t.Fatal("second raise should be rejected")
	}

	reason, ok := i.Reason()
	if !ok || reason.Code != "a" {
		t.Fatalf("Reason() = %+v (ok=%v), want code a", reason, ok)
	}

	i.clear()
	if i.IsSet() {
		t.Fatal("interrupt should be clear after clear()")
	}
	if !i.Raise(InterruptReason{Code: "b"}) {
		t.Fatal("raise after clear should be accepted")
	}
}

func TestGameClockRestore(t *testing.T) {
	start := time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewGameClock(start)

	c.advance(42)
	if got := c.ElapsedSeconds(); got != 42 {
		t.Fatalf("ElapsedSeconds() = %d, want 42", got)
	}

	// Negative and zero advances are ignored.
	c.advance(0)
	c.advance(-10)
	if got := c.Now(); !got.Equal(start.Add(42 * time.Second)) {
		t.Fatalf("Now() = %v, want %v", got, start.Add(42*time.Second))
	}

	loaded := time.Date(2203, time.June, 15, 8, 30, 0, 123456, time.UTC)
	c.Restore(loaded)
	if got := c.Now(); !got.Equal(loaded.Truncate(time.Second)) {
		t.Fatalf("Now() after Restore = %v, want %v", got, loaded.Truncate(time.Second))
	}
	if got := c.ElapsedSeconds(); got != 0 {
		t.Fatalf("ElapsedSeconds() after Restore = %d, want 0", got)
	}
}

func TestPipelinePreservesOrder(t *testing.T) {
	var order []string
	mk := func(name string) Processor {
		p := &scriptProcessor{name: name}
		p.hook = func(*Subpulse, []Region, int64) error {
			order = append(order, name)
			return nil
		}
		return p
	}
	p := NewPipeline(mk("orbit"), mk("movement"), mk("economy"))

	if got := p.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	names := p.Names()
	want := []string{"orbit", "movement", "economy"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	sp := &Subpulse{Limit: NewSubpulseLimit(), Interrupt: NewInterrupt()}
	if err := p.RunAll(sp, nil, 5); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", order, want)
		}
	}
}

package timectrl

import (
	"math"
	"time"
)

// Unbounded is the SubpulseLimit value when no checkpoint has been requested.
const Unbounded int64 = math.MaxInt64

// SubpulseLimit is the "next mandatory checkpoint" register. Any processor may
// shorten it during its own execution; the scheduler reads it once at the next
// subpulse boundary and resets it before the pipeline runs. A request made
// during subpulse N therefore bounds the length of subpulse N+1.
//
// The register is created once per simulation and is only ever touched by the
// scheduler and by the processor currently executing, so it needs no locking.
type SubpulseLimit struct {
	seconds int64
}

// NewSubpulseLimit constructs an unbounded register.
func NewSubpulseLimit() *SubpulseLimit {
	return &SubpulseLimit{seconds: Unbounded}
}

// Reset clears the register back to unbounded.
func (l *SubpulseLimit) Reset() {
	l.seconds = Unbounded
}

// Request narrows the register to at most the given number of seconds. The
// effective limit is the minimum over all requests since the last Reset;
// a processor can never extend what another processor already asked for.
// Non-positive requests are ignored.
func (l *SubpulseLimit) Request(seconds int64) {
	if seconds <= 0 {
		return
	}
	if seconds < l.seconds {
		l.seconds = seconds
	}
}

// Current returns the effective limit in seconds.
func (l *SubpulseLimit) Current() int64 {
	return l.seconds
}

// InterruptReason carries enough context for the caller to decide how to
// resume after an interrupted pulse.
type InterruptReason struct {
	// Code is a short machine-readable category, e.g. "fleet-arrived".
	Code string
	// RegionID and EntityID locate the originating event.
	RegionID string
	EntityID string
	// Message is a human-readable description.
	Message string
	// SimTime is the simulation time at which the interrupt was raised.
	SimTime time.Time
}

// Interrupt is a single-slot signal a processor raises to demand that time
// advancement stop once the current subpulse's pipeline pass finishes. The
// first raiser within a pulse wins; the scheduler clears the slot exactly
// once, at the top of each Advance call.
type Interrupt struct {
	reason *InterruptReason
}

// NewInterrupt constructs an empty interrupt register.
func NewInterrupt() *Interrupt {
	return &Interrupt{}
}

// Raise records the reason if the slot is empty and reports whether it was
// accepted. Raises after the first are no-ops until the next Advance call.
func (i *Interrupt) Raise(reason InterruptReason) bool {
	if i.reason != nil {
		return false
	}
	r := reason
	i.reason = &r
	return true
}

// IsSet reports whether an interrupt is pending.
func (i *Interrupt) IsSet() bool {
	return i.reason != nil
}

// Reason returns the pending interrupt reason, if any.
func (i *Interrupt) Reason() (InterruptReason, bool) {
	if i.reason == nil {
		return InterruptReason{}, false
	}
	return *i.reason, true
}

func (i *Interrupt) clear() {
	i.reason = nil
}

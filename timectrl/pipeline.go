package timectrl

import "fmt"

// Region is an independently simulated partition of the game world, e.g. a
// star system. The scheduler never looks inside a region; it only hands the
// current snapshot to the pipeline.
type Region interface {
	RegionID() string
}

// RegionSource yields the set of active regions. The scheduler re-fetches the
// set at every subpulse boundary so regions can appear or disappear between
// subpulses without scheduler changes.
type RegionSource interface {
	ActiveRegions() []Region
}

// RegionSourceFunc adapts a function to RegionSource.
type RegionSourceFunc func() []Region

// ActiveRegions implements RegionSource.
func (f RegionSourceFunc) ActiveRegions() []Region { return f() }

// Subpulse carries the coordination state handed to each processor
// invocation: the clock (read-only by convention), the two registers, and the
// zero-based index of the subpulse within the current pulse.
type Subpulse struct {
	Clock     SimClock
	Limit     *SubpulseLimit
	Interrupt *Interrupt
	Index     int
}

// Processor is a stateless unit of per-subpulse simulation logic. Given the
// current region snapshot and the subpulse's elapsed seconds, it updates
// region state in place and may shorten the SubpulseLimit or raise the
// Interrupt through the Subpulse value. Processors must not call back into
// the scheduler.
type Processor interface {
	// Name identifies the processor in logs and fault reports.
	Name() string
	// ProcessSubpulse applies one subpulse of simulation logic. The clock has
	// already been advanced to the end of the subpulse when it runs.
	ProcessSubpulse(sp *Subpulse, regions []Region, seconds int64) error
}

// ProcessorFault is the fatal error produced when a processor fails during a
// pipeline pass. Region state mutated earlier in the same subpulse is not
// rolled back.
type ProcessorFault struct {
	Processor string
	Subpulse  int
	Err       error
}

func (f *ProcessorFault) Error() string {
	return fmt.Sprintf("processor %q failed in subpulse %d: %v", f.Processor, f.Subpulse, f.Err)
}

func (f *ProcessorFault) Unwrap() error { return f.Err }

// Pipeline is the fixed, ordered set of processors run once per subpulse.
// Order is a correctness invariant: a later processor observes state exactly
// as mutated by earlier ones within the same subpulse. The pipeline is
// immutable after construction.
type Pipeline struct {
	processors []Processor
}

// NewPipeline constructs a pipeline. The given order is preserved for the
// lifetime of the process.
func NewPipeline(processors ...Processor) *Pipeline {
	ps := make([]Processor, len(processors))
	copy(ps, processors)
	return &Pipeline{processors: ps}
}

// Len returns the number of processors.
func (p *Pipeline) Len() int { return len(p.processors) }

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.processors))
	for _, proc := range p.processors {
		names = append(names, proc.Name())
	}
	return names
}

// RunAll executes every processor, in order, once, synchronously. The first
// failure stops the pass and is returned as a *ProcessorFault; the pipeline
// has no error recovery of its own.
func (p *Pipeline) RunAll(sp *Subpulse, regions []Region, seconds int64) error {
	for _, proc := range p.processors {
		if err := proc.ProcessSubpulse(sp, regions, seconds); err != nil {
			return &ProcessorFault{Processor: proc.Name(), Subpulse: sp.Index, Err: err}
		}
	}
	return nil
}

package model

// StarSystem is an independently simulated partition of the galaxy. The
// scheduler treats systems as opaque regions; the processor pipeline mutates
// their contents in place once per subpulse.
type StarSystem struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Active systems participate in simulation; inactive ones are skipped
	// until something (a fleet transit, an order) wakes them up.
	Active bool `json:"active"`

	// Bodies are ordered so that a body's orbital parent always precedes it.
	// The scenario loader enforces this.
	Bodies   []*Body   `json:"bodies,omitempty"`
	Fleets   []*Fleet  `json:"fleets,omitempty"`
	Colonies []*Colony `json:"colonies,omitempty"`
}

// RegionID identifies the system as a simulation region.
func (s *StarSystem) RegionID() string { return s.ID }

// Body returns the body with the given ID, or nil if not found.
func (s *StarSystem) Body(id string) *Body {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

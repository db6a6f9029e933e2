package model

// MotionSource indicates how a body's motion is determined.
type MotionSource int

const (
	MotionSourceStatic    MotionSource = iota
	MotionSourceKeplerian              // circular-orbit propagation from orbital elements
	MotionSourceTLE                    // SGP4 propagation from a two-line element set
)

// OrbitalElements describes a circular orbit around a parent body.
// The epoch for Phase is the Unix zero time, which keeps propagation a pure
// function of simulation time.
type OrbitalElements struct {
	ParentID      string  `json:"parent_id"`
	RadiusKm      float64 `json:"radius_km"`
	PeriodSeconds int64   `json:"period_seconds"`
	PhaseRad      float64 `json:"phase_rad"`
}

// Body is a natural or artificial object inside a star system: a star,
// planet, moon, or a tracked orbital platform.
type Body struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // e.g. "STAR", "PLANET", "MOON", "STATION"

	MotionSource MotionSource    `json:"motion_source"`
	Orbit        OrbitalElements `json:"orbit,omitempty"`

	// TLE lines, used when MotionSource is MotionSourceTLE.
	TLELine1 string `json:"tle_line1,omitempty"`
	TLELine2 string `json:"tle_line2,omitempty"`

	Position Vec3 `json:"position"`
}

package model

// Fleet is a group of ships moving together through a star system.
type Fleet struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Position Vec3 `json:"position"`

	// SpeedKmPerSec is the fleet's rated cruise speed. Zero means the fleet
	// cannot move under its own power.
	SpeedKmPerSec float64 `json:"speed_km_per_sec"`

	// Waypoints are visited in order; the fleet stops after the last one.
	Waypoints []Vec3 `json:"waypoints,omitempty"`
}

// Destination returns the next waypoint, if any.
func (f *Fleet) Destination() (Vec3, bool) {
	if len(f.Waypoints) == 0 {
		return Vec3{}, false
	}
	return f.Waypoints[0], true
}

// PopWaypoint discards the current destination once reached.
func (f *Fleet) PopWaypoint() {
	if len(f.Waypoints) > 0 {
		f.Waypoints = f.Waypoints[1:]
	}
}

package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/novaworks/stellarsim/model"
)

// MotionModel updates a body's position for a given simulation time.
// Propagation is a pure function of simulation time, so re-running a model
// for the same instant is idempotent.
type MotionModel interface {
	UpdatePosition(simTime time.Time, b *model.Body, parentPos model.Vec3)
}

// StaticMotionModel leaves the body's position unchanged.
type StaticMotionModel struct{}

// UpdatePosition for static motion does nothing.
func (m *StaticMotionModel) UpdatePosition(simTime time.Time, b *model.Body, parentPos model.Vec3) {
	// no-op
}

// KeplerianMotionModel propagates a circular orbit around the body's parent.
type KeplerianMotionModel struct{}

// UpdatePosition places the body on its orbit circle for the given time. The
// orbit plane is the system ecliptic (XY plane); phase zero points along +X
// at the Unix zero time.
func (m *KeplerianMotionModel) UpdatePosition(simTime time.Time, b *model.Body, parentPos model.Vec3) {
	period := b.Orbit.PeriodSeconds
	if period <= 0 {
		return
	}
	angle := b.Orbit.PhaseRad + 2*math.Pi*float64(simTime.Unix()%period)/float64(period)
	b.Position = parentPos.Add(model.Vec3{
		X: b.Orbit.RadiusKm * math.Cos(angle),
		Y: b.Orbit.RadiusKm * math.Sin(angle),
	})
}

// SGP4MotionModel uses a TLE and SGP4 to update the position of a tracked
// platform in planetary orbit.
type SGP4MotionModel struct {
	sat satellite.Satellite
}

// NewSGP4ModelFromTLE constructs an orbital model from TLE lines.
func NewSGP4ModelFromTLE(line1, line2 string) *SGP4MotionModel {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &SGP4MotionModel{sat: sat}
}

// UpdatePosition propagates the platform to the given simulation time.
// go-satellite works in ECI kilometres; the result is rebased onto the parent
// body so the platform tracks it through the system.
func (m *SGP4MotionModel) UpdatePosition(simTime time.Time, b *model.Body, parentPos model.Vec3) {
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	b.Position = parentPos.Add(model.Vec3{
		X: posECEF.X,
		Y: posECEF.Y,
		Z: posECEF.Z,
	})
}

// NewMotionModel chooses an appropriate MotionModel for the body.
func NewMotionModel(b *model.Body) MotionModel {
	switch {
	case b.MotionSource == model.MotionSourceTLE && b.TLELine1 != "" && b.TLELine2 != "":
		return NewSGP4ModelFromTLE(b.TLELine1, b.TLELine2)
	case b.MotionSource == model.MotionSourceKeplerian:
		return &KeplerianMotionModel{}
	default:
		return &StaticMotionModel{}
	}
}

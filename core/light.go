package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LightSim moves the scene light like a small body falling around a heavy
// planet at the origin, and eases the light intensity toward its target.
type LightSim struct {
	Position  mgl32.Vec3
	Velocity  mgl32.Vec3
	Intensity float32

	G          float32
	LightMass  float32
	PlanetMass float32
	TargetInt  float32
}

// NewLightSim returns the simulation in the demo's starting configuration.
func NewLightSim() *LightSim {
	return &LightSim{
		Position:   mgl32.Vec3{45, 0, 10},
		Velocity:   mgl32.Vec3{-1, -0.3, 1},
		G:          2.5,
		LightMass:  10,
		PlanetMass: 100,
		TargetInt:  70,
	}
}

// Step advances the light by dt seconds: symplectic Euler against the
// planet's gravity, then an exponential ease of the intensity with
// rate k = 0.25*dt.
func (l *LightSim) Step(dt float32) {
	if dt <= 0 {
		return
	}

	r := l.Position.Len()
	if r > 1e-4 {
		dir := l.Position.Mul(1 / r)
		force := dir.Mul(-l.G * l.PlanetMass * l.LightMass / (r * r))
		accel := force.Mul(1 / l.LightMass)
		l.Velocity = l.Velocity.Add(accel.Mul(dt))
	}
	l.Position = l.Position.Add(l.Velocity.Mul(dt))

	k := 0.25 * dt
	l.Intensity = l.TargetInt*k + l.Intensity*(1-k)
}

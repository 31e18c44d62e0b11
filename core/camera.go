package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera circles the scene origin. Yaw and pitch are in degrees,
// Distance is the zoom-out along the view axis, Offset shifts the pivot.
type OrbitCamera struct {
	Offset      mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Roll        float32
	Distance    float32
	Sensitivity float32
	ZoomSpeed   float32

	Fov  float32
	Near float32
	Far  float32
}

// NewOrbitCamera returns the camera framing the demo scene.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Offset:      mgl32.Vec3{15.2, -8.5, 0},
		Yaw:         -182.8,
		Pitch:       -32.5,
		Distance:    48,
		Sensitivity: 0.25,
		ZoomSpeed:   2.0,
		Fov:         60,
		Near:        0.1,
		Far:         256,
	}
}

// Rotate applies a mouse drag delta.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}
}

// Zoom moves the camera along the view axis; distance never drops below
// the near plane.
func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance -= delta * c.ZoomSpeed
	if c.Distance < c.Near {
		c.Distance = c.Near
	}
}

// ViewMatrix builds the orbit view: zoom out, shift the pivot, then rotate.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	view := mgl32.Translate3D(0, 0, -c.Distance)
	view = view.Mul4(mgl32.Translate3D(c.Offset.X(), c.Offset.Y(), c.Offset.Z()))
	view = view.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(c.Pitch)))
	view = view.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(c.Yaw)))
	view = view.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(c.Roll)))
	return view
}

// Position recovers the world-space eye point from the view matrix.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	view := c.ViewMatrix()
	rot := view.Mat3()
	d := mgl32.Vec3{view.At(0, 3), view.At(1, 3), view.At(2, 3)}
	// camPos = -d * R: undo the rotation applied after the translation.
	return rot.Transpose().Mul3x1(d).Mul(-1)
}

// ProjectionMatrix for the given surface aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

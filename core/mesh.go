package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the mesh shader input: position, normal, uv, color.
type Vertex struct {
	Pos    [3]float32
	Normal [3]float32
	UV     [2]float32
	Color  [3]float32
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// NewUVSphere builds a longitude/latitude sphere of the given radius.
func NewUVSphere(radius float32, slices, stacks int) *Mesh {
	if slices < 3 {
		slices = 3
	}
	if stacks < 2 {
		stacks = 2
	}

	m := &Mesh{}
	for st := 0; st <= stacks; st++ {
		phi := math.Pi * float64(st) / float64(stacks)
		y := math.Cos(phi)
		ringR := math.Sin(phi)
		for sl := 0; sl <= slices; sl++ {
			theta := 2 * math.Pi * float64(sl) / float64(slices)
			dir := mgl32.Vec3{
				float32(ringR * math.Cos(theta)),
				float32(y),
				float32(ringR * math.Sin(theta)),
			}
			m.Vertices = append(m.Vertices, Vertex{
				Pos:    dir.Mul(radius),
				Normal: dir,
				UV:     [2]float32{float32(sl) / float32(slices), float32(st) / float32(stacks)},
				Color:  [3]float32{1, 1, 1},
			})
		}
	}

	cols := slices + 1
	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			a := uint32(st*cols + sl)
			b := a + 1
			c := a + uint32(cols)
			d := c + 1
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	return m
}

// rockNoise is a smooth directional bump function. Deterministic in the
// direction so shared sphere vertices deform identically and the surface
// stays watertight; the seed shifts the bump phases between rock variants.
func rockNoise(dir mgl32.Vec3, seed float32) float32 {
	x, y, z := float64(dir.X()), float64(dir.Y()), float64(dir.Z())
	s := float64(seed)
	n := math.Sin(4.7*x+s) * math.Cos(3.1*y+2*s)
	n += 0.5 * math.Sin(7.3*y+s*1.7) * math.Cos(5.9*z+s)
	n += 0.25 * math.Sin(11.1*z+s*0.4) * math.Cos(9.2*x+3*s)
	return float32(n / 1.75)
}

// NewRock deforms a sphere into a lumpy rock. Roughness is the relative
// displacement amplitude; seed picks the variant.
func NewRock(radius float32, slices, stacks int, roughness, seed float32) *Mesh {
	m := NewUVSphere(1, slices, stacks)
	for i := range m.Vertices {
		dir := mgl32.Vec3(m.Vertices[i].Normal)
		r := radius * (1 + roughness*rockNoise(dir, seed))
		m.Vertices[i].Pos = dir.Mul(r)
		shade := 0.75 + 0.25*rockNoise(dir, seed+13)
		m.Vertices[i].Color = [3]float32{shade, shade, shade}
	}
	m.RecomputeNormals()
	return m
}

// NewBox builds an axis-aligned box centered at the origin.
func NewBox(w, h, d float32) *Mesh {
	hx, hy, hz := w/2, h/2, d/2

	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	half := mgl32.Vec3{hx, hy, hz}

	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for i := 0; i < 4; i++ {
			su := float32(i%2)*2 - 1
			sv := float32(i/2)*2 - 1
			dir := f.normal.Add(f.u.Mul(su)).Add(f.v.Mul(sv))
			pos := mgl32.Vec3{dir.X() * half.X(), dir.Y() * half.Y(), dir.Z() * half.Z()}
			m.Vertices = append(m.Vertices, Vertex{
				Pos:    pos,
				Normal: f.normal,
				UV:     [2]float32{(su + 1) / 2, (sv + 1) / 2},
				Color:  [3]float32{1, 1, 1},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+1, base+3)
	}
	return m
}

// NewCageConstruct builds an open cubic frame: twelve thin bars along the
// edges of a cube with the given outer size.
func NewCageConstruct(size, barThickness float32) *Mesh {
	h := size / 2
	t := barThickness

	m := &Mesh{}
	addBar := func(w, bh, d float32, at mgl32.Vec3) {
		bar := NewBox(w, bh, d)
		bar.Translate(at)
		m.Append(bar)
	}

	// Four bars along each axis, at the cube edges.
	for _, sy := range []float32{-h, h} {
		for _, sz := range []float32{-h, h} {
			addBar(size+t, t, t, mgl32.Vec3{0, sy, sz})
		}
	}
	for _, sx := range []float32{-h, h} {
		for _, sz := range []float32{-h, h} {
			addBar(t, size+t, t, mgl32.Vec3{sx, 0, sz})
		}
	}
	for _, sx := range []float32{-h, h} {
		for _, sy := range []float32{-h, h} {
			addBar(t, t, size+t, mgl32.Vec3{sx, sy, 0})
		}
	}
	return m
}

// Translate shifts every vertex position.
func (m *Mesh) Translate(offset mgl32.Vec3) {
	for i := range m.Vertices {
		p := mgl32.Vec3(m.Vertices[i].Pos).Add(offset)
		m.Vertices[i].Pos = p
	}
}

// Append merges another mesh into this one, rebasing its indices.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// RecomputeNormals replaces vertex normals with area-weighted averages of
// the adjacent face normals.
func (m *Mesh) RecomputeNormals() {
	acc := make([]mgl32.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		p0 := mgl32.Vec3(m.Vertices[i0].Pos)
		p1 := mgl32.Vec3(m.Vertices[i1].Pos)
		p2 := mgl32.Vec3(m.Vertices[i2].Pos)
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[i0] = acc[i0].Add(face)
		acc[i1] = acc[i1].Add(face)
		acc[i2] = acc[i2].Add(face)
	}
	for i := range m.Vertices {
		if acc[i].Len() > 1e-8 {
			m.Vertices[i].Normal = acc[i].Normalize()
		}
	}
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min = mgl32.Vec3(m.Vertices[0].Pos)
	max = min
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Pos[i] < min[i] {
				min[i] = v.Pos[i]
			}
			if v.Pos[i] > max[i] {
				max[i] = v.Pos[i]
			}
		}
	}
	return
}

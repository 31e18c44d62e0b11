package core

import (
	"math"
	"testing"
)

func TestUVSphereShape(t *testing.T) {
	radius := float32(2.5)
	m := NewUVSphere(radius, 16, 12)

	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		t.Fatal("empty sphere mesh")
	}
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(m.Indices))
	}

	for i, v := range m.Vertices {
		p := math.Sqrt(float64(v.Pos[0]*v.Pos[0] + v.Pos[1]*v.Pos[1] + v.Pos[2]*v.Pos[2]))
		if math.Abs(p-float64(radius)) > 1e-4 {
			t.Fatalf("vertex %d at distance %f, want %f", i, p, radius)
		}
		n := math.Sqrt(float64(v.Normal[0]*v.Normal[0] + v.Normal[1]*v.Normal[1] + v.Normal[2]*v.Normal[2]))
		if math.Abs(n-1) > 1e-4 {
			t.Fatalf("vertex %d normal length %f, want 1", i, n)
		}
	}

	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d out of range (%d vertices)", idx, len(m.Vertices))
		}
	}
}

func TestRockDeterministicAndLumpy(t *testing.T) {
	a := NewRock(1, 24, 18, 0.35, 7)
	b := NewRock(1, 24, 18, 0.35, 7)
	other := NewRock(1, 24, 18, 0.35, 8)

	if len(a.Vertices) != len(b.Vertices) {
		t.Fatal("same parameters produced different vertex counts")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("vertex %d differs between identical rocks", i)
		}
	}

	differs := false
	for i := range a.Vertices {
		if a.Vertices[i].Pos != other.Vertices[i].Pos {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("different seeds produced identical rocks")
	}

	// Displacement must actually deform the sphere but stay bounded.
	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, v := range a.Vertices {
		r := math.Sqrt(float64(v.Pos[0]*v.Pos[0] + v.Pos[1]*v.Pos[1] + v.Pos[2]*v.Pos[2]))
		minR = math.Min(minR, r)
		maxR = math.Max(maxR, r)
	}
	if maxR-minR < 0.05 {
		t.Errorf("rock barely deformed: radius range [%f, %f]", minR, maxR)
	}
	if minR < 0.5 || maxR > 1.5 {
		t.Errorf("rock radius range [%f, %f] outside roughness bounds", minR, maxR)
	}
}

func TestRockWatertightSeams(t *testing.T) {
	// Vertices duplicated along the UV seam share a direction; displacement
	// keyed on direction must keep them coincident.
	m := NewRock(1, 16, 12, 0.35, 3)
	// Recomputed normals differ between seam duplicates (each side averages
	// different faces), so key on the unit position instead: displacement is
	// radial and preserves the original sphere direction.
	byDir := map[[3]int32][3]float32{}
	pairs := 0
	for _, v := range m.Vertices {
		r := math.Sqrt(float64(v.Pos[0]*v.Pos[0] + v.Pos[1]*v.Pos[1] + v.Pos[2]*v.Pos[2]))
		if r == 0 {
			t.Fatal("vertex collapsed to the origin")
		}
		key := [3]int32{
			int32(math.Round(float64(v.Pos[0]) / r * 10000)),
			int32(math.Round(float64(v.Pos[1]) / r * 10000)),
			int32(math.Round(float64(v.Pos[2]) / r * 10000)),
		}
		if prev, ok := byDir[key]; ok {
			pairs++
			for i := 0; i < 3; i++ {
				if math.Abs(float64(prev[i]-v.Pos[i])) > 1e-5 {
					t.Fatalf("seam crack: direction %v has positions %v and %v", key, prev, v.Pos)
				}
			}
		} else {
			byDir[key] = v.Pos
		}
	}
	// The theta seam and the pole fans must produce duplicates, otherwise
	// the check compared nothing.
	if pairs == 0 {
		t.Fatal("no coincident vertex pairs found")
	}
}

func TestCageConstructBounds(t *testing.T) {
	size := float32(24.0)
	m := NewCageConstruct(size, 0.5)
	if len(m.Indices) == 0 {
		t.Fatal("empty cage mesh")
	}

	min, max := m.Bounds()
	for i := 0; i < 3; i++ {
		if float64(max[i]-min[i]) < float64(size) {
			t.Errorf("axis %d extent %f, want >= %f", i, max[i]-min[i], size)
		}
	}

	// The frame is hollow: no vertex near the cube center.
	for _, v := range m.Vertices {
		if math.Abs(float64(v.Pos[0])) < 1 && math.Abs(float64(v.Pos[1])) < 1 && math.Abs(float64(v.Pos[2])) < 1 {
			t.Fatalf("vertex %v inside the hollow center", v.Pos)
		}
	}
}

func TestMeshAppendRebasesIndices(t *testing.T) {
	a := NewBox(1, 1, 1)
	vcount := len(a.Vertices)
	icount := len(a.Indices)

	b := NewBox(2, 2, 2)
	a.Append(b)

	if len(a.Vertices) != 2*vcount {
		t.Fatalf("vertex count %d, want %d", len(a.Vertices), 2*vcount)
	}
	for i := icount; i < len(a.Indices); i++ {
		if a.Indices[i] < uint32(vcount) {
			t.Fatalf("appended index %d not rebased", a.Indices[i])
		}
	}
}

package core

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"
	"unsafe"
)

func testConfig(count int) PlacementConfig {
	return PlacementConfig{
		Count:         count,
		Rings:         DefaultRings,
		TextureLayers: 8,
	}
}

func ringRadius(inst Instance) float64 {
	x := float64(inst.Pos[0])
	z := float64(inst.Pos[2])
	return math.Sqrt(x*x + z*z)
}

func TestPlacementRingBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	instances, err := GeneratePlacement(testConfig(DefaultInstanceCount), rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}

	k := len(DefaultRings)
	perRing := DefaultInstanceCount / k
	for i, inst := range instances {
		ring := DefaultRings[RingOf(i, k, perRing, LayoutStrided)]
		rho := ringRadius(inst)
		// Allow for float32 rounding at the band edges.
		if rho < float64(ring.Inner)-1e-3 || rho > float64(ring.Outer)+1e-3 {
			t.Fatalf("instance %d: radius %f outside ring [%f, %f]", i, rho, ring.Inner, ring.Outer)
		}
	}
}

func TestPlacementUniformAreaDensity(t *testing.T) {
	// With uniform area sampling, rho^2 is uniform over [r0^2, r1^2].
	rng := rand.New(rand.NewSource(2))
	ring := Ring{5, 7}
	cfg := PlacementConfig{Count: 60000, Rings: []Ring{ring}}

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}

	const buckets = 10
	counts := make([]int, buckets)
	lo := float64(ring.Inner) * float64(ring.Inner)
	hi := float64(ring.Outer) * float64(ring.Outer)
	for _, inst := range instances {
		rho := ringRadius(inst)
		b := int((rho*rho - lo) / (hi - lo) * buckets)
		if b < 0 {
			b = 0
		}
		if b >= buckets {
			b = buckets - 1
		}
		counts[b]++
	}

	expected := float64(len(instances)) / buckets
	for b, c := range counts {
		dev := math.Abs(float64(c)-expected) / expected
		if dev > 0.06 {
			t.Errorf("rho^2 bucket %d: count %d deviates %.1f%% from expected %.0f", b, c, dev*100, expected)
		}
	}
}

func TestPlacementThetaUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cfg := PlacementConfig{Count: 60000, Rings: []Ring{{5, 7}}}

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}

	const buckets = 12
	counts := make([]int, buckets)
	for _, inst := range instances {
		theta := math.Atan2(float64(inst.Pos[2]), float64(inst.Pos[0]))
		if theta < 0 {
			theta += 2 * math.Pi
		}
		b := int(theta / (2 * math.Pi) * buckets)
		if b >= buckets {
			b = buckets - 1
		}
		counts[b]++
	}

	expected := float64(len(instances)) / buckets
	for b, c := range counts {
		dev := math.Abs(float64(c)-expected) / expected
		if dev > 0.06 {
			t.Errorf("theta bucket %d: count %d deviates %.1f%% from expected %.0f", b, c, dev*100, expected)
		}
	}
}

func TestPlacementScaleTriangular(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	cfg := testConfig(60000)

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}

	// Scale is (1.5 + u - u') * 0.75: triangular over [0.375, 1.875],
	// peaked at 1.125.
	var sum float64
	center, edges := 0, 0
	for _, inst := range instances {
		s := float64(inst.Scale)
		if s < 0.375 || s > 1.875 {
			t.Fatalf("scale %f outside [0.375, 1.875]", s)
		}
		sum += s
		if s > 1.0 && s < 1.25 {
			center++
		}
		if s < 0.6 || s > 1.65 {
			edges++
		}
	}

	mean := sum / float64(len(instances))
	if math.Abs(mean-1.125) > 0.01 {
		t.Errorf("scale mean %f, want ~1.125", mean)
	}
	// A triangular distribution piles up in the middle; a uniform one would
	// put equal mass in equally wide windows.
	if center <= edges {
		t.Errorf("scale not triangular: center window %d <= edge windows %d", center, edges)
	}
}

func TestPlacementRotationRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	instances, err := GeneratePlacement(testConfig(4096), rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}

	var maxRot float32
	for _, inst := range instances {
		for axis, r := range inst.Rot {
			if r < 0 || r > float32(math.Pi) {
				t.Fatalf("rotation axis %d: %f outside [0, pi]", axis, r)
			}
			if r > maxRot {
				maxRot = r
			}
		}
	}
	// The half-turn restriction should actually be exercised.
	if maxRot < 2.5 {
		t.Errorf("max rotation %f suspiciously low for [0, pi] sampling", maxRot)
	}
}

func TestPlacementTextureLayers(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	cfg := testConfig(4096)
	cfg.TextureLayers = 8

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}

	seen := make(map[int32]int)
	for _, inst := range instances {
		if inst.TexIndex < 0 || inst.TexIndex >= 8 {
			t.Fatalf("texture layer %d outside [0, 8)", inst.TexIndex)
		}
		seen[inst.TexIndex]++
	}
	if len(seen) != 8 {
		t.Errorf("expected all 8 layers to be used, got %d", len(seen))
	}
}

func TestPlacementTruncation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := testConfig(100) // 100 across 6 rings

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}
	if len(instances) != 96 {
		t.Errorf("truncation: got %d instances, want 96", len(instances))
	}
}

func TestPlacementPad(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	cfg := testConfig(100)
	cfg.Remainder = RemainderPad

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}
	if len(instances) != 102 {
		t.Errorf("pad: got %d instances, want 102", len(instances))
	}
}

func TestPlacementReject(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cfg := testConfig(100)
	cfg.Remainder = RemainderReject

	if _, err := GeneratePlacement(cfg, rng); err == nil {
		t.Fatal("expected error for 100 instances across 6 rings with RemainderReject")
	}

	cfg.Count = 96
	if _, err := GeneratePlacement(cfg, rng); err != nil {
		t.Fatalf("96 across 6 rings should divide evenly: %v", err)
	}
}

func TestPlacementStridedIndexing(t *testing.T) {
	// 12 instances over 3 well separated rings: indices 0,3,6,9 must land in
	// ring 0, indices 1,4,7,10 in ring 1, indices 2,5,8,11 in ring 2.
	rng := rand.New(rand.NewSource(10))
	rings := []Ring{{1, 2}, {3, 4}, {5, 6}}
	cfg := PlacementConfig{Count: 12, Rings: rings}

	instances, err := GeneratePlacement(cfg, rng)
	if err != nil {
		t.Fatalf("GeneratePlacement failed: %v", err)
	}
	if len(instances) != 12 {
		t.Fatalf("got %d instances, want 12", len(instances))
	}

	for i, inst := range instances {
		want := rings[i%3]
		rho := ringRadius(inst)
		if rho < float64(want.Inner)-1e-3 || rho > float64(want.Outer)+1e-3 {
			t.Errorf("instance %d: radius %f not in ring %d [%f, %f]", i, rho, i%3, want.Inner, want.Outer)
		}
	}
}

func TestPlacementRingMajorIsPermutation(t *testing.T) {
	// Both layouts consume the RNG in the same (slot, ring) order, so the
	// same seed yields the same instances in a different arrangement.
	rings := []Ring{{1, 2}, {3, 4}, {5, 6}}
	strided, err := GeneratePlacement(PlacementConfig{Count: 12, Rings: rings}, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}
	ringMajor, err := GeneratePlacement(PlacementConfig{Count: 12, Rings: rings, Layout: LayoutRingMajor}, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}

	k, perRing := 3, 4
	for slot := 0; slot < perRing; slot++ {
		for ring := 0; ring < k; ring++ {
			a := strided[ring+slot*k]
			b := ringMajor[slot+ring*perRing]
			if a != b {
				t.Fatalf("slot %d ring %d: strided %+v != ring-major %+v", slot, ring, a, b)
			}
		}
	}
}

func TestPlacementDeterminism(t *testing.T) {
	first, err := GeneratePlacement(testConfig(DefaultInstanceCount), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	second, err := GeneratePlacement(testConfig(DefaultInstanceCount), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("instance %d differs between runs with the same seed", i)
		}
	}
}

func TestPlacementValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(12))

	if _, err := GeneratePlacement(PlacementConfig{Count: 0, Rings: DefaultRings}, rng); err == nil {
		t.Error("expected error for zero instance count")
	}
	if _, err := GeneratePlacement(PlacementConfig{Count: 16}, rng); err == nil {
		t.Error("expected error for empty ring list")
	}
	if _, err := GeneratePlacement(PlacementConfig{Count: 16, Rings: []Ring{{7, 5}}}, rng); err == nil {
		t.Error("expected error for inverted ring bounds")
	}
}

func TestPackInstances(t *testing.T) {
	if size := unsafe.Sizeof(Instance{}); size != 32 {
		t.Fatalf("Instance is %d bytes, want 32", size)
	}

	instances := []Instance{
		{
			Pos:      [3]float32{1, 2, 3},
			Rot:      [3]float32{0.5, 1.0, 1.5},
			Scale:    1.125,
			TexIndex: 7,
		},
	}
	packed := PackInstances(instances)
	if len(packed) != 32 {
		t.Fatalf("packed %d bytes, want 32", len(packed))
	}

	want := []float32{1, 2, 3, 0.5, 1.0, 1.5, 1.125}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(packed[i*4:]))
		if got != w {
			t.Errorf("scalar %d: got %f, want %f", i, got, w)
		}
	}
	if layer := int32(binary.LittleEndian.Uint32(packed[28:])); layer != 7 {
		t.Errorf("texture layer: got %d, want 7", layer)
	}

	if PackInstances(nil) != nil {
		t.Error("packing no instances should yield no bytes")
	}
}

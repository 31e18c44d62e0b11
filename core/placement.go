package core

import (
	"fmt"
	"math"
	"math/rand"
	"unsafe"
)

// Instance is one per-instance attribute record, laid out exactly as the
// rock shader consumes it: position, rotation, scale, texture layer.
// The struct is 32 bytes with no padding; PackInstances relies on that.
type Instance struct {
	Pos      [3]float32
	Rot      [3]float32
	Scale    float32
	TexIndex int32
}

// Ring is an annulus in the XZ plane, centered on the origin.
type Ring struct {
	Inner float32
	Outer float32
}

// Layout selects how instances are ordered across rings in the output slice.
type Layout int

const (
	// LayoutStrided interleaves rings: instance index = ring + slot*K.
	LayoutStrided Layout = iota
	// LayoutRingMajor groups each ring contiguously: index = slot + ring*perRing.
	LayoutRingMajor
)

// RemainderMode controls what happens when the instance count does not
// divide evenly across the rings.
type RemainderMode int

const (
	// RemainderTruncate drops the remainder; total output is (N/K)*K.
	RemainderTruncate RemainderMode = iota
	// RemainderPad rounds each ring up to ceil(N/K); total output may exceed N.
	RemainderPad
	// RemainderReject returns an error unless K divides N.
	RemainderReject
)

// PlacementConfig describes a rock field. Zero values for the sampling
// constants fall back to the defaults used by the demo.
type PlacementConfig struct {
	Count         int
	Rings         []Ring
	TextureLayers int
	Layout        Layout
	Remainder     RemainderMode

	BaseScale    float32 // center of the triangular scale distribution, default 1.5
	ScaleShrink  float32 // final multiplier on scale, default 0.75
	HeightBand   float32 // vertical jitter band, default 0.05
	HeightOffset float32 // vertical offset, default -0.25
}

// DefaultRings are the six ring bands of the sample scene.
var DefaultRings = []Ring{
	{5.0, 7.0},
	{8.0, 11.0},
	{13.0, 17.0},
	{20.0, 26.0},
	{30.0, 40.0},
	{48.0, 60.0},
}

// DefaultInstanceCount is the number of rocks the demo draws.
const DefaultInstanceCount = 2048

func (cfg *PlacementConfig) applyDefaults() {
	if cfg.BaseScale == 0 {
		cfg.BaseScale = 1.5
	}
	if cfg.ScaleShrink == 0 {
		cfg.ScaleShrink = 0.75
	}
	if cfg.HeightBand == 0 {
		cfg.HeightBand = 0.05
	}
	if cfg.HeightOffset == 0 {
		cfg.HeightOffset = -0.25
	}
	if cfg.TextureLayers <= 0 {
		cfg.TextureLayers = 1
	}
}

func (cfg *PlacementConfig) validate() error {
	if cfg.Count <= 0 {
		return fmt.Errorf("placement: instance count must be positive, got %d", cfg.Count)
	}
	if len(cfg.Rings) == 0 {
		return fmt.Errorf("placement: at least one ring is required")
	}
	for i, r := range cfg.Rings {
		if r.Inner < 0 || r.Outer <= r.Inner {
			return fmt.Errorf("placement: ring %d has invalid bounds [%f, %f]", i, r.Inner, r.Outer)
		}
	}
	if cfg.Remainder == RemainderReject && cfg.Count%len(cfg.Rings) != 0 {
		return fmt.Errorf("placement: %d instances do not divide evenly across %d rings", cfg.Count, len(cfg.Rings))
	}
	return nil
}

// GeneratePlacement distributes instances across the configured ring bands.
// Radii are sampled with uniform area density inside each annulus, so rocks
// spread evenly per unit area instead of bunching near the inner edge.
// The only side effect is advancing rng.
func GeneratePlacement(cfg PlacementConfig, rng *rand.Rand) ([]Instance, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	k := len(cfg.Rings)
	perRing := cfg.Count / k
	if cfg.Remainder == RemainderPad && cfg.Count%k != 0 {
		perRing++
	}
	if perRing == 0 {
		// Fewer instances than rings under truncation.
		return []Instance{}, nil
	}

	out := make([]Instance, perRing*k)

	// Sampling walks (slot, ring) so the RNG stream does not depend on the
	// output layout; the two layouts hold the same instances permuted.
	for slot := 0; slot < perRing; slot++ {
		for ring := 0; ring < k; ring++ {
			var idx int
			switch cfg.Layout {
			case LayoutRingMajor:
				idx = slot + ring*perRing
			default:
				idx = ring + slot*k
			}
			out[idx] = sampleInstance(cfg, cfg.Rings[ring], rng)
		}
	}
	return out, nil
}

func sampleInstance(cfg PlacementConfig, ring Ring, rng *rand.Rand) Instance {
	r0 := float64(ring.Inner)
	r1 := float64(ring.Outer)

	rho := math.Sqrt((r1*r1-r0*r0)*rng.Float64() + r0*r0)
	theta := 2 * math.Pi * rng.Float64()

	pos := [3]float32{
		float32(rho * math.Cos(theta)),
		rng.Float32()*cfg.HeightBand + cfg.HeightOffset,
		float32(rho * math.Sin(theta)),
	}
	// Each axis in [0, pi), half the full turn.
	rot := [3]float32{
		float32(math.Pi * rng.Float64()),
		float32(math.Pi * rng.Float64()),
		float32(math.Pi * rng.Float64()),
	}
	scale := (cfg.BaseScale + rng.Float32() - rng.Float32()) * cfg.ScaleShrink
	texIndex := int32(rng.Float64() * float64(cfg.TextureLayers))

	return Instance{
		Pos:      pos,
		Rot:      rot,
		Scale:    scale,
		TexIndex: texIndex,
	}
}

// PackInstances exposes the records as a flat byte slice for a vertex-rate
// buffer upload. The bytes alias the slice backing array; the instance data
// is written once and never mutated afterwards, so no copy is needed.
func PackInstances(instances []Instance) []byte {
	if len(instances) == 0 {
		return nil
	}
	size := len(instances) * int(unsafe.Sizeof(Instance{}))
	return unsafe.Slice((*byte)(unsafe.Pointer(&instances[0])), size)
}

// RingOf reports which ring an instance index belongs to under the given
// layout, for perRing instances per ring across k rings.
func RingOf(index, k, perRing int, layout Layout) int {
	if layout == LayoutRingMajor {
		return index / perRing
	}
	return index % k
}

package core

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"math/rand"
	"os"

	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// TextureAsset is RGBA8 texel data, possibly with multiple array layers
// stacked back to back.
type TextureAsset struct {
	Width  uint32
	Height uint32
	Layers uint32
	Texels []uint8
}

// AssetServer owns the CPU-side meshes and textures of the scene.
type AssetServer struct {
	meshes   map[AssetId]*Mesh
	textures map[AssetId]*TextureAsset
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:   make(map[AssetId]*Mesh),
		textures: make(map[AssetId]*TextureAsset),
	}
}

func (s *AssetServer) AddMesh(m *Mesh) AssetId {
	id := makeAssetId()
	s.meshes[id] = m
	return id
}

func (s *AssetServer) Mesh(id AssetId) *Mesh {
	return s.meshes[id]
}

func (s *AssetServer) AddTexture(t *TextureAsset) AssetId {
	id := makeAssetId()
	s.textures[id] = t
	return id
}

func (s *AssetServer) Texture(id AssetId) *TextureAsset {
	return s.textures[id]
}

// LoadTexturePNG decodes a PNG file into a single-layer RGBA texture.
func (s *AssetServer) LoadTexturePNG(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open texture %s: %w", filename, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", filename, err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}

	return s.AddTexture(&TextureAsset{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Layers: 1,
		Texels: rgba.Pix,
	}), nil
}

// hash2 is a cheap integer lattice hash in [0, 1).
func hash2(x, y, seed int64) float32 {
	h := x*374761393 + y*668265263 + seed*1274126177
	h = (h ^ (h >> 13)) * 1103515245
	h ^= h >> 16
	return float32(uint32(h)%65536) / 65536.0
}

// valueNoise samples smoothed lattice noise at a point. Coordinates wrap at
// period so the generated textures tile.
func valueNoise(x, y float64, period int64, seed int64) float32 {
	xi, yi := int64(math.Floor(x)), int64(math.Floor(y))
	fx, fy := x-float64(xi), y-float64(yi)

	wrap := func(v int64) int64 {
		v %= period
		if v < 0 {
			v += period
		}
		return v
	}
	v00 := hash2(wrap(xi), wrap(yi), seed)
	v10 := hash2(wrap(xi+1), wrap(yi), seed)
	v01 := hash2(wrap(xi), wrap(yi+1), seed)
	v11 := hash2(wrap(xi+1), wrap(yi+1), seed)

	sx := float32(fx * fx * (3 - 2*fx))
	sy := float32(fy * fy * (3 - 2*fy))

	a := v00 + (v10-v00)*sx
	b := v01 + (v11-v01)*sx
	return a + (b-a)*sy
}

// fbm layers several octaves of value noise.
func fbm(x, y float64, octaves int, seed int64) float32 {
	var sum, amp, norm float32 = 0, 1, 0
	freq := 1.0
	period := int64(8)
	for o := 0; o < octaves; o++ {
		sum += amp * valueNoise(x*freq, y*freq, period, seed+int64(o)*31)
		norm += amp
		amp *= 0.5
		freq *= 2
		period *= 2
	}
	return sum / norm
}

// GenerateRockTextureArray synthesizes layered rock surfaces, one layer per
// texture array slice. Each layer gets its own base tint and noise seed.
func GenerateRockTextureArray(size, layers int, rng *rand.Rand) *TextureAsset {
	texels := make([]uint8, size*size*4*layers)

	for layer := 0; layer < layers; layer++ {
		seed := rng.Int63()
		// Dusty browns and greys, one tint per layer.
		baseR := 0.35 + rng.Float32()*0.3
		baseG := baseR * (0.75 + rng.Float32()*0.2)
		baseB := baseG * (0.7 + rng.Float32()*0.2)

		off := layer * size * size * 4
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				n := fbm(float64(x)/float64(size)*8, float64(y)/float64(size)*8, 4, seed)
				shade := 0.55 + 0.45*n
				i := off + (y*size+x)*4
				texels[i+0] = uint8(mathClamp(baseR*shade) * 255)
				texels[i+1] = uint8(mathClamp(baseG*shade) * 255)
				texels[i+2] = uint8(mathClamp(baseB*shade) * 255)
				texels[i+3] = 255
			}
		}
	}

	return &TextureAsset{
		Width:  uint32(size),
		Height: uint32(size),
		Layers: uint32(layers),
		Texels: texels,
	}
}

// GenerateLavaTexture synthesizes the glowing surface used by the planet and
// the light marker.
func GenerateLavaTexture(size int, rng *rand.Rand) *TextureAsset {
	texels := make([]uint8, size*size*4)
	seed := rng.Int63()

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := fbm(float64(x)/float64(size)*6, float64(y)/float64(size)*6, 5, seed)
			// Dark crust with bright veins where the noise pinches.
			vein := float32(math.Pow(float64(1-mathAbs(n-0.5)*2), 4))
			r := mathClamp(0.25 + 0.75*vein)
			g := mathClamp(0.05 + 0.45*vein*vein)
			b := mathClamp(0.02 + 0.08*vein)
			i := (y*size + x) * 4
			texels[i+0] = uint8(r * 255)
			texels[i+1] = uint8(g * 255)
			texels[i+2] = uint8(b * 255)
			texels[i+3] = 255
		}
	}

	return &TextureAsset{
		Width:  uint32(size),
		Height: uint32(size),
		Layers: 1,
		Texels: texels,
	}
}

func mathClamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mathAbs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

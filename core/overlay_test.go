package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestOverlayFontBakesAtlas(t *testing.T) {
	font, err := NewOverlayFont(goregular.TTF, 20)
	require.NoError(t, err)

	nonzero := 0
	for _, a := range font.Atlas.Pix {
		if a > 0 {
			nonzero++
		}
	}
	assert.Greater(t, nonzero, 100, "atlas should contain rasterized glyphs")

	for _, r := range "Rendering 2048 instances" {
		if r == ' ' {
			continue
		}
		_, ok := font.glyphs[r]
		assert.True(t, ok, "missing glyph %q", r)
	}
}

func TestOverlayFontRejectsGarbage(t *testing.T) {
	_, err := NewOverlayFont([]byte("not a font"), 20)
	assert.Error(t, err)
}

func TestBuildVerticesQuadPerGlyph(t *testing.T) {
	font, err := NewOverlayFont(goregular.TTF, 20)
	require.NoError(t, err)

	items := []OverlayItem{{
		Text:     "abc",
		Position: [2]float32{5, 5},
		Scale:    1,
		Color:    [4]float32{1, 1, 1, 1},
	}}
	verts := font.BuildVertices(items, 1280, 720)
	assert.Len(t, verts, 3*6)

	for _, v := range verts {
		assert.GreaterOrEqual(t, v.Pos[0], float32(-1))
		assert.LessOrEqual(t, v.Pos[0], float32(1))
		assert.GreaterOrEqual(t, v.UV[0], float32(0))
		assert.LessOrEqual(t, v.UV[1], float32(1))
	}
}

func TestBuildVerticesNewlineAdvancesRow(t *testing.T) {
	font, err := NewOverlayFont(goregular.TTF, 20)
	require.NoError(t, err)

	one := font.BuildVertices([]OverlayItem{{Text: "a", Position: [2]float32{5, 5}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}, 800, 600)
	two := font.BuildVertices([]OverlayItem{{Text: "a\na", Position: [2]float32{5, 5}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}, 800, 600)
	require.Len(t, one, 6)
	require.Len(t, two, 12)

	// Second row sits lower on screen, which is a smaller clip-space Y.
	assert.Less(t, two[6].Pos[1], one[0].Pos[1])
	// Newline resets the X advance.
	assert.InDelta(t, float64(one[0].Pos[0]), float64(two[6].Pos[0]), 1e-6)
}

func TestBuildVerticesZeroScreen(t *testing.T) {
	font, err := NewOverlayFont(goregular.TTF, 20)
	require.NoError(t, err)
	assert.Nil(t, font.BuildVertices([]OverlayItem{{Text: "a"}}, 0, 0))
}

package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// OverlayVertex matches the text shader input.
type OverlayVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// OverlayItem is one piece of text in pixel coordinates, top-left origin.
type OverlayItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type glyphInfo struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

// OverlayFont rasterizes ASCII glyphs into a single alpha atlas at load
// time; BuildVertices then only assembles quads.
type OverlayFont struct {
	Atlas  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

const overlayAtlasSize = 512

// NewOverlayFont parses TTF/OTF data and bakes the printable ASCII range.
func NewOverlayFont(fontData []byte, fontSize float64) (*OverlayFont, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, overlayAtlasSize, overlayAtlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= overlayAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= overlayAtlasSize {
			return nil, fmt.Errorf("glyph atlas overflow at %q (font size %.1f too large)", r, fontSize)
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / overlayAtlasSize, float32(y) / overlayAtlasSize},
			uvMax: [2]float32{float32(x+w) / overlayAtlasSize, float32(y+h) / overlayAtlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0,
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &OverlayFont{
		Atlas:  atlas,
		glyphs: glyphs,
		face:   face,
	}, nil
}

// BuildVertices expands the items into clip-space triangles for the given
// framebuffer size. Two triangles per glyph.
func (of *OverlayFont) BuildVertices(items []OverlayItem, screenW, screenH int) []OverlayVertex {
	vertices := make([]OverlayVertex, 0, len(items)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	if sw <= 0 || sh <= 0 {
		return nil
	}

	metrics := of.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, item := range items {
		startX := item.Position[0]
		posX := startX
		posY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				posX = startX
				posY += lineHeight * item.Scale
				continue
			}

			g, ok := of.glyphs[r]
			if !ok {
				continue
			}

			x0 := (posX+g.off[0]*item.Scale)/sw*2 - 1
			y0 := 1 - (posY+g.off[1]*item.Scale)/sh*2
			x1 := (posX+(g.off[0]+g.size[0])*item.Scale)/sw*2 - 1
			y1 := 1 - (posY+(g.off[1]+g.size[1])*item.Scale)/sh*2

			vertices = append(vertices,
				OverlayVertex{Pos: [2]float32{x0, y0}, UV: g.uvMin, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x1, y1}, UV: g.uvMax, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color},
			)

			posX += g.adv * item.Scale
		}
	}
	return vertices
}

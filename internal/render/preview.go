// Package render draws the tile-layout overview using fogleman/gg.
package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/xenium-tiles/tilecut/internal/tiling"
	"github.com/xenium-tiles/tilecut/internal/transcripts"
	"github.com/xenium-tiles/tilecut/pkg/colormap"
)

// Config contains renderer configuration.
type Config struct {
	// MaxSize is the pixel length of the longest image edge.
	MaxSize int
	// MaxPoints caps how many transcripts are drawn as the backdrop.
	MaxPoints int
}

// PreviewRenderer renders a dataset extent with its tile rectangles.
type PreviewRenderer struct {
	config Config
}

// NewPreviewRenderer creates a new preview renderer.
func NewPreviewRenderer(cfg Config) *PreviewRenderer {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1024
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 50000
	}
	return &PreviewRenderer{config: cfg}
}

// RenderOverview draws the transcript backdrop and one outlined rectangle
// per tile, colored with the categorical colormap, and returns a PNG.
func (r *PreviewRenderer) RenderOverview(b tiling.Bounds, tiles []tiling.Rect, t transcripts.Table) ([]byte, error) {
	// Tiles can be expanded beyond the dataset bounds; fit them all in.
	minX, maxX := b.MinX, b.MaxX
	minY, maxY := b.MinY, b.MaxY
	for _, tile := range tiles {
		minX = math.Min(minX, tile.StartX)
		maxX = math.Max(maxX, tile.EndX)
		minY = math.Min(minY, tile.StartY)
		maxY = math.Max(maxY, tile.EndY)
	}

	extentW := maxX - minX
	extentH := maxY - minY
	if extentW <= 0 {
		extentW = 1
	}
	if extentH <= 0 {
		extentH = 1
	}
	scale := float64(r.config.MaxSize) / math.Max(extentW, extentH)

	w := int(math.Ceil(extentW * scale))
	h := int(math.Ceil(extentH * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	// Transcript backdrop, stride-sampled to MaxPoints and colored by
	// quality score.
	qvMin, qvMax := math.Inf(1), math.Inf(-1)
	for _, rec := range t {
		qvMin = math.Min(qvMin, rec.QV)
		qvMax = math.Max(qvMax, rec.QV)
	}
	qvRange := qvMax - qvMin
	if qvRange == 0 {
		qvRange = 1
	}

	step := 1
	if len(t) > r.config.MaxPoints {
		step = len(t) / r.config.MaxPoints
	}
	for i := 0; i < len(t); i += step {
		dc.SetColor(colormap.Viridis.At((t[i].QV - qvMin) / qvRange))
		px := (t[i].X - minX) * scale
		py := (t[i].Y - minY) * scale
		dc.DrawPoint(px, py, 1)
		dc.Fill()
	}

	// Dataset envelope.
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle((b.MinX-minX)*scale, (b.MinY-minY)*scale, (b.MaxX-b.MinX)*scale, (b.MaxY-b.MinY)*scale)
	dc.Stroke()

	// Tile rectangles.
	dc.SetLineWidth(2)
	for i, tile := range tiles {
		dc.SetColor(colormap.Categorical.AtIndex(i))
		dc.DrawRectangle(
			(tile.StartX-minX)*scale,
			(tile.StartY-minY)*scale,
			(tile.EndX-tile.StartX)*scale,
			(tile.EndY-tile.StartY)*scale,
		)
		dc.Stroke()
	}

	return encodeContext(dc)
}

func encodeContext(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	// Use fast PNG encoder
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

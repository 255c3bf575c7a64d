package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/xenium-tiles/tilecut/internal/tiling"
	"github.com/xenium-tiles/tilecut/internal/transcripts"
)

func TestRenderOverview(t *testing.T) {
	table := transcripts.Table{
		{X: 0, Y: 0, QV: 20},
		{X: 100, Y: 50, QV: 30},
		{X: 50, Y: 25, QV: 40},
	}
	b := tiling.BoundsOf(table)
	tiles := []tiling.Rect{
		{StartX: 0, EndX: 60, StartY: 0, EndY: 60},
		{StartX: 40, EndX: 100, StartY: 0, EndY: 60},
	}

	r := NewPreviewRenderer(Config{MaxSize: 200})
	data, err := r.RenderOverview(b, tiles, table)
	if err != nil {
		t.Fatalf("RenderOverview: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	// Extent is 100x60 including the tile overhang, so the longest edge
	// maps to MaxSize.
	size := img.Bounds().Size()
	if size.X != 200 {
		t.Errorf("expected width 200, got %d", size.X)
	}
	if size.Y != 120 {
		t.Errorf("expected height 120, got %d", size.Y)
	}
}

func TestRenderOverviewDegenerateExtent(t *testing.T) {
	table := transcripts.Table{{X: 5, Y: 5, QV: 20}}
	b := tiling.Bounds{MinX: 5, MaxX: 5, MinY: 5, MaxY: 5}

	r := NewPreviewRenderer(Config{MaxSize: 64})
	data, err := r.RenderOverview(b, nil, table)
	if err != nil {
		t.Fatalf("RenderOverview: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
}

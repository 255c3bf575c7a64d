// Package tiling partitions a transcript table into overlapping
// rectangular tiles with a per-tile minimum row count.
package tiling

import (
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/xenium-tiles/tilecut/internal/transcripts"
)

// Bounds is the integer-rounded coordinate envelope of a table.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// BoundsOf computes the envelope of t: minima rounded down, maxima rounded
// up, so tile edges land on integer coordinates enclosing all data.
// The table must be non-empty; the pipeline rejects empty tables upstream.
func BoundsOf(t transcripts.Table) Bounds {
	b := Bounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	for _, r := range t {
		b.MinX = math.Min(b.MinX, r.X)
		b.MaxX = math.Max(b.MaxX, r.X)
		b.MinY = math.Min(b.MinY, r.Y)
		b.MaxY = math.Max(b.MaxY, r.Y)
	}
	b.MinX = math.Floor(b.MinX)
	b.MaxX = math.Ceil(b.MaxX)
	b.MinY = math.Floor(b.MinY)
	b.MaxY = math.Ceil(b.MaxY)
	return b
}

// Rect is an axis-aligned tile rectangle, inclusive on all four edges.
type Rect struct {
	StartX, EndX float64
	StartY, EndY float64
}

// Expand grows the rectangle outward by d on all four sides.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		StartX: r.StartX - d, EndX: r.EndX + d,
		StartY: r.StartY - d, EndY: r.EndY + d,
	}
}

// Covers reports whether the rectangle encloses the bounds.
func (r Rect) Covers(b Bounds) bool {
	return r.StartX <= b.MinX && r.EndX >= b.MaxX &&
		r.StartY <= b.MinY && r.EndY >= b.MaxY
}

// Contains reports whether the point lies inside the closed rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.StartX && x <= r.EndX && y >= r.StartY && y <= r.EndY
}

// Name returns the deterministic tile name for the rectangle.
func (r Rect) Name() string {
	return "X" + ftoa(r.StartX) + "-" + ftoa(r.EndX) +
		"_Y" + ftoa(r.StartY) + "-" + ftoa(r.EndY) +
		"_filtered_transcripts.csv"
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Slice returns the rows of t falling inside the closed rectangle,
// preserving row order.
func Slice(t transcripts.Table, r Rect) transcripts.Table {
	out := make(transcripts.Table, 0)
	for _, rec := range t {
		if r.Contains(rec.X, rec.Y) {
			out = append(out, rec)
		}
	}
	return out
}

// Tile is one accepted rectangle and its transcript slice.
type Tile struct {
	Rect Rect
	Rows transcripts.Table
}

// Config contains partitioner geometry.
type Config struct {
	Width          float64
	Height         float64
	Overlap        float64
	MinTranscripts int
}

// Partitioner walks a bounds envelope in fixed strides and materializes
// one tile per step, growing under-populated tiles.
type Partitioner struct {
	cfg Config
}

// NewPartitioner validates the geometry and creates a partitioner. The
// overlap must be positive because it doubles as the expansion increment,
// and width and height must exceed it or the stride would never advance.
func NewPartitioner(cfg Config) (*Partitioner, error) {
	if cfg.Overlap <= 0 {
		return nil, fmt.Errorf("the overlap must be positive, got %g", cfg.Overlap)
	}
	if cfg.Width <= cfg.Overlap {
		return nil, fmt.Errorf("tile width %g must be greater than the overlap %g", cfg.Width, cfg.Overlap)
	}
	if cfg.Height <= cfg.Overlap {
		return nil, fmt.Errorf("tile height %g must be greater than the overlap %g", cfg.Height, cfg.Overlap)
	}
	if cfg.MinTranscripts < 0 {
		return nil, fmt.Errorf("minimal transcripts must not be negative, got %d", cfg.MinTranscripts)
	}
	return &Partitioner{cfg: cfg}, nil
}

// Partition walks b row by row and calls emit for every materialized tile.
// The table must already hold at least MinTranscripts rows. An emit error
// aborts the walk.
func (p *Partitioner) Partition(t transcripts.Table, b Bounds, emit func(Tile) error) error {
	for y := b.MinY; y <= b.MaxY; y += p.cfg.Height - p.cfg.Overlap {
		for x := b.MinX; x <= b.MaxX; x += p.cfg.Width - p.cfg.Overlap {
			tile := p.materialize(t, b, Rect{
				StartX: x, EndX: x + p.cfg.Width,
				StartY: y, EndY: y + p.cfg.Height,
			})
			if err := emit(tile); err != nil {
				return err
			}
		}
	}
	return nil
}

// materialize slices the requested rectangle and, while the slice is below
// the minimum, grows the rectangle by the overlap on all four sides.
// Termination: each pass grows the rectangle by a positive amount, and once
// it covers the dataset bounds the slice is the whole table, whose size was
// validated against the minimum before partitioning started.
func (p *Partitioner) materialize(t transcripts.Table, b Bounds, r Rect) Tile {
	log.Printf("... trying to create tile X=%g-%g Y=%g-%g", r.StartX, r.EndX, r.StartY, r.EndY)
	for {
		rows := Slice(t, r)
		if len(rows) >= p.cfg.MinTranscripts || r.Covers(b) {
			return Tile{Rect: r, Rows: rows}
		}
		log.Printf("... ... not enough transcripts (%d), adding buffer to tile", len(rows))
		r = r.Expand(p.cfg.Overlap)
	}
}

// Package transcripts models the Xenium transcript table and its
// column-level transformations.
package transcripts

import (
	"fmt"
	"strings"

	"github.com/xenium-tiles/tilecut/internal/cellid"
)

// Columns is the required column set, in output order.
var Columns = []string{
	"transcript_id",
	"cell_id",
	"overlaps_nucleus",
	"feature_name",
	"x_location",
	"y_location",
	"z_location",
	"qv",
}

// Record is one detected molecule.
type Record struct {
	TranscriptID    string
	CellID          string // raw id, rewritten by the normalization passes
	Cell            uint32 // decoded id, set by DecodeCells
	OverlapsNucleus bool
	FeatureName     string
	X, Y, Z         float64
	QV              float64
}

// Table is an ordered transcript collection in one coordinate space.
type Table []Record

// controlPrefixes mark non-gene features shipped for quality control.
var controlPrefixes = []string{
	"NegControlProbe_",
	"antisense_",
	"NegControlCodeword_",
	"BLANK_",
}

// IsControlProbe reports whether a feature name is a control or background
// probe rather than a real gene.
func IsControlProbe(featureName string) bool {
	for _, p := range controlPrefixes {
		if strings.HasPrefix(featureName, p) {
			return true
		}
	}
	return false
}

// FilterControls returns the table without control-probe rows, preserving
// row order.
func (t Table) FilterControls() Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if !IsControlProbe(r.FeatureName) {
			out = append(out, r)
		}
	}
	return out
}

// NormalizeUnassigned rewrites the "UNASSIGNED" sentinel to "0".
func (t Table) NormalizeUnassigned() {
	for i := range t {
		if t[i].CellID == "UNASSIGNED" {
			t[i].CellID = "0"
		}
	}
}

// DropNonNuclearAssignments clears the cell assignment of rows detected
// outside the nucleus (nucleus-only mode).
func (t Table) DropNonNuclearAssignments() {
	for i := range t {
		if !t[i].OverlapsNucleus {
			t[i].CellID = "0"
		}
	}
}

// DecodeCells decodes every raw cell id into Record.Cell. The first
// malformed id aborts the pass.
func (t Table) DecodeCells(dec *cellid.Decoder) error {
	for i := range t {
		v, err := dec.Decode(t[i].CellID)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		t[i].Cell = v
	}
	return nil
}

package colormap

import (
	"image/color"
	"testing"
)

func TestViridisEndpoints(t *testing.T) {
	t.Parallel()

	c0, ok := Viridis.At(0).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=0")
	}
	if c0 != (color.RGBA{R: 68, G: 1, B: 84, A: 255}) {
		t.Fatalf("unexpected Viridis.At(0): %#v", c0)
	}

	c1, ok := Viridis.At(1).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=1")
	}
	if c1 != (color.RGBA{R: 253, G: 231, B: 37, A: 255}) {
		t.Fatalf("unexpected Viridis.At(1): %#v", c1)
	}
}

func TestCategoricalWraps(t *testing.T) {
	t.Parallel()

	if Categorical.AtIndex(0) != Categorical.AtIndex(20) {
		t.Fatalf("expected index 20 to wrap to index 0")
	}
}

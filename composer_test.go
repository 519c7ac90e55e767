package mockup

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeCreatives is an in-memory CreativeSource for tests.
type fakeCreatives map[string]*Pixmap

func (f fakeCreatives) Creative(_ context.Context, id string) (*Pixmap, error) {
	pm, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: creative %s", ErrAssetUnavailable, id)
	}
	return pm, nil
}

func twoPlacementFrame() *Frame {
	return &Frame{
		ID:     "frame-1",
		Width:  200,
		Height: 200,
		Placements: []Placement{
			{Label: "left", Quad: RectQuad(10, 10, 100, 100)},
			{Label: "right", Quad: RectQuad(60, 60, 100, 100)},
		},
	}
}

func TestComposeAllZOrder(t *testing.T) {
	// Overlapping placements: the later placement must win in the
	// overlap region.
	base := solid(200, 200, 0, 0, 0, 255)
	src := fakeCreatives{
		"red":  solid(50, 50, 255, 0, 0, 255),
		"blue": solid(50, 50, 0, 0, 255, 255),
	}
	frame := twoPlacementFrame()

	out, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{
		{PlacementIndex: 0, CreativeID: "red"},
		{PlacementIndex: 1, CreativeID: "blue"},
	}, src, DefaultCompositeOptions())
	if err != nil {
		t.Fatalf("ComposeAll: %v", err)
	}

	// Overlap region (60..110 x 60..110) shows blue.
	if r, _, b, _ := out.Image.RGBAAt(80, 80); r != 0 || b != 255 {
		t.Errorf("overlap pixel = r%d b%d, want blue on top", r, b)
	}
	// Red-only region.
	if r, _, b, _ := out.Image.RGBAAt(20, 20); r != 255 || b != 0 {
		t.Errorf("red-only pixel = r%d b%d, want red", r, b)
	}
	// Blue-only region.
	if r, _, b, _ := out.Image.RGBAAt(150, 150); r != 0 || b != 255 {
		t.Errorf("blue-only pixel = r%d b%d, want blue", r, b)
	}
	if len(out.Composited) != 2 || len(out.Skipped) != 0 {
		t.Errorf("composited=%v skipped=%v, want 2 composited", out.Composited, out.Skipped)
	}
}

func TestComposeAllPartialSkip(t *testing.T) {
	base := solid(200, 200, 0, 0, 0, 255)
	src := fakeCreatives{"red": solid(50, 50, 255, 0, 0, 255)}
	frame := twoPlacementFrame()

	out, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{
		{PlacementIndex: 0, CreativeID: "red"},
		{PlacementIndex: 1, CreativeID: "missing"},
	}, src, DefaultCompositeOptions())
	if err != nil {
		t.Fatalf("ComposeAll: %v", err)
	}

	if len(out.Composited) != 1 || out.Composited[0] != 0 {
		t.Errorf("Composited = %v, want [0]", out.Composited)
	}
	if len(out.Skipped) != 1 || out.Skipped[0].Index != 1 || out.Skipped[0].Label != "right" {
		t.Fatalf("Skipped = %+v, want placement 1", out.Skipped)
	}
	// The skipped placement's exclusive region keeps base pixels.
	if r, g, b, _ := out.Image.RGBAAt(150, 150); r != 0 || g != 0 || b != 0 {
		t.Errorf("skipped region pixel = (%d,%d,%d), want base black", r, g, b)
	}
}

func TestComposeAllAllFailed(t *testing.T) {
	base := solid(200, 200, 0, 0, 0, 255)
	frame := twoPlacementFrame()

	_, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{
		{PlacementIndex: 0, CreativeID: "missing-a"},
		{PlacementIndex: 1, CreativeID: "missing-b"},
	}, fakeCreatives{}, DefaultCompositeOptions())

	if !errors.Is(err, ErrAllPlacementsFailed) {
		t.Errorf("err = %v, want ErrAllPlacementsFailed", err)
	}
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("err = %v, want wrapped ErrAssetUnavailable", err)
	}
}

func TestComposeAllUnassignedShowThrough(t *testing.T) {
	base := solid(200, 200, 7, 7, 7, 255)
	src := fakeCreatives{"red": solid(50, 50, 255, 0, 0, 255)}
	frame := twoPlacementFrame()

	out, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{
		{PlacementIndex: 0, CreativeID: "red"},
	}, src, DefaultCompositeOptions())
	if err != nil {
		t.Fatalf("ComposeAll: %v", err)
	}
	if len(out.Skipped) != 0 {
		t.Errorf("unassigned placement recorded as skipped: %+v", out.Skipped)
	}
	if r, g, b, _ := out.Image.RGBAAt(150, 150); r != 7 || g != 7 || b != 7 {
		t.Errorf("unassigned region = (%d,%d,%d), want base", r, g, b)
	}
}

func TestComposeAllValidation(t *testing.T) {
	base := solid(100, 100, 0, 0, 0, 255)
	src := fakeCreatives{}

	t.Run("no placements", func(t *testing.T) {
		frame := &Frame{ID: "empty", Width: 100, Height: 100}
		_, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{{CreativeID: "x"}}, src, DefaultCompositeOptions())
		if !errors.Is(err, ErrNoPlacements) {
			t.Errorf("err = %v, want ErrNoPlacements", err)
		}
	})

	t.Run("no assignments", func(t *testing.T) {
		frame := twoPlacementFrame()
		_, err := ComposeAll(context.Background(), base, frame, nil, src, DefaultCompositeOptions())
		if !errors.Is(err, ErrNoAssignments) {
			t.Errorf("err = %v, want ErrNoAssignments", err)
		}
	})

	t.Run("assignment index out of range", func(t *testing.T) {
		frame := twoPlacementFrame()
		_, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{
			{PlacementIndex: 5, CreativeID: "x"},
		}, src, DefaultCompositeOptions())
		if !errors.Is(err, ErrNoAssignments) {
			t.Errorf("err = %v, want ErrNoAssignments", err)
		}
	})

	t.Run("degenerate placement quad", func(t *testing.T) {
		frame := &Frame{
			ID: "degenerate", Width: 100, Height: 100,
			Placements: []Placement{{Quad: Quad{Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0)}}},
		}
		_, err := ComposeAll(context.Background(), base, frame, []PlacementAssignment{{CreativeID: "x"}}, src, DefaultCompositeOptions())
		if !errors.Is(err, ErrInvalidQuad) {
			t.Errorf("err = %v, want ErrInvalidQuad", err)
		}
	})
}

func TestComposeAllDoesNotMutateBase(t *testing.T) {
	base := solid(200, 200, 0, 0, 0, 255)
	before := base.Clone()
	src := fakeCreatives{"red": solid(50, 50, 255, 0, 0, 255)}

	_, err := ComposeAll(context.Background(), base, twoPlacementFrame(), []PlacementAssignment{
		{PlacementIndex: 0, CreativeID: "red"},
	}, src, DefaultCompositeOptions())
	if err != nil {
		t.Fatalf("ComposeAll: %v", err)
	}
	if !samePixels(base, before) {
		t.Error("ComposeAll mutated the caller's base image")
	}
}

package mockup

import "fmt"

// Placement is a named advertising slot on one frame. The quad is
// authoritative; the bounding box is always derived from it.
type Placement struct {
	// Label is a free-text identifier ("gable left", "scaffold top").
	// It is not used in geometry.
	Label string `json:"label"`

	// Quad holds the 4 corner points in frame pixel space.
	Quad Quad `json:"quad"`
}

// Bounds returns the placement's axis-aligned bounding box, derived
// from the quad.
func (p Placement) Bounds() Rect {
	return p.Quad.Bounds()
}

// Frame is a photographed physical advertising surface (scaffold,
// façade, gable) with one or more placements. Placement order defines
// compositing z-order: index 0 is painted first, later placements
// paint on top where quads overlap.
type Frame struct {
	ID string `json:"id"`

	// ImageRef identifies the base photo in the asset store (URL or
	// storage key). The frame record never embeds pixel data.
	ImageRef string `json:"imageRef"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Placements []Placement `json:"placements"`

	// LegacyPlacement carries the single-placement field older frame
	// records used before Placements existed. NormalizeFrame folds it
	// into Placements; nothing downstream ever reads it.
	LegacyPlacement *Placement `json:"placement,omitempty"`
}

// Creative is a client-supplied rectangular advertising image with
// known pixel dimensions. Its corners (0,0), (w,0), (w,h), (0,h) form
// the source rectangle of the homography.
type Creative struct {
	ID       string `json:"id"`
	ImageRef string `json:"imageRef"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// PlacementAssignment maps a placement (by index into
// Frame.Placements) to a creative id. Placements without an assignment
// are left untouched and show through the base frame image.
type PlacementAssignment struct {
	PlacementIndex int    `json:"placementIndex"`
	CreativeID     string `json:"creativeId"`
}

// NormalizeFrame migrates legacy single-placement records: a frame
// whose LegacyPlacement is set and whose Placements list is empty gets
// a one-element Placements list. Called once at the data-model
// boundary when a frame record is loaded; the compositing algorithms
// never re-check the legacy field.
func NormalizeFrame(f *Frame) {
	if f.LegacyPlacement != nil && len(f.Placements) == 0 {
		f.Placements = []Placement{*f.LegacyPlacement}
	}
	f.LegacyPlacement = nil
}

// ValidateFrame checks the structural invariants of a frame record:
// dimensions are positive, at least one placement exists, every quad
// is a simple polygon with positive area, and every bounding box
// intersects the frame extent.
func ValidateFrame(f *Frame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("mockup: frame %s: invalid dimensions %dx%d", f.ID, f.Width, f.Height)
	}
	if len(f.Placements) == 0 {
		return fmt.Errorf("%w: frame %s", ErrNoPlacements, f.ID)
	}
	extent := Rect{Width: f.Width, Height: f.Height}
	for i, pl := range f.Placements {
		if !pl.Quad.IsValid() {
			return fmt.Errorf("%w: frame %s placement %d (%s)", ErrInvalidQuad, f.ID, i, pl.Label)
		}
		if pl.Bounds().Intersect(extent).Empty() {
			return fmt.Errorf("%w: frame %s placement %d (%s) lies outside the frame", ErrInvalidQuad, f.ID, i, pl.Label)
		}
	}
	return nil
}

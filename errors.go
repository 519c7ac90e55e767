package mockup

import (
	"errors"
	"fmt"
)

// Error taxonomy. Geometry and format errors are deterministic input
// validation failures and are never retried. Asset errors may be
// transient; retry policy belongs to the caller.
var (
	// ErrInvalidQuad is returned for degenerate or self-intersecting
	// placement quads (zero/negative area, collinear corners).
	ErrInvalidQuad = errors.New("mockup: invalid placement quad")

	// ErrAssetUnavailable is returned when frame or creative pixel data
	// could not be fetched or decoded.
	ErrAssetUnavailable = errors.New("mockup: asset unavailable")

	// ErrUnsupportedFormat is returned when the requested output format
	// is not one of the supported encodings.
	ErrUnsupportedFormat = errors.New("mockup: unsupported output format")

	// ErrNoPlacements is returned when a frame reaches the composer
	// with an empty placement list.
	ErrNoPlacements = errors.New("mockup: frame has no placements")

	// ErrAllPlacementsFailed is returned when every assigned placement
	// of a multi-placement frame failed to composite.
	ErrAllPlacementsFailed = errors.New("mockup: all placements failed")

	// ErrNoAssignments is returned when a composite request carries no
	// assignment that references an existing placement.
	ErrNoAssignments = errors.New("mockup: no placement assignments")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("mockup: empty image data")
)

// errSourceSize reports an unusable creative rectangle.
func errSourceSize(w, h float64) error {
	return fmt.Errorf("%w: source rectangle %gx%g", ErrInvalidQuad, w, h)
}

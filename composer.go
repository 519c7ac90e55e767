package mockup

import (
	"context"
	"fmt"
	"log/slog"
)

// CreativeSource resolves creative ids to decoded pixel buffers.
// Implementations fetch and decode asset bytes (HTTP store, local
// cache); failures surface as errors wrapping ErrAssetUnavailable.
// Implementations must be safe for concurrent use: the batch runner
// resolves creatives from multiple workers at once.
type CreativeSource interface {
	Creative(ctx context.Context, id string) (*Pixmap, error)
}

// SkippedPlacement records one placement left out of a composite
// because its creative could not be resolved.
type SkippedPlacement struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// ComposeOutput is the result of compositing all assigned placements
// of one frame.
type ComposeOutput struct {
	// Image is the working buffer with every successfully assigned
	// placement composited in, sized exactly like the base image.
	Image *Pixmap

	// Composited lists the placement indices that were painted.
	Composited []int

	// Skipped lists assigned placements whose creative could not be
	// resolved. The composite as a whole still succeeded ("best effort
	// mockup"): base pixels show through where a placement was skipped.
	Skipped []SkippedPlacement
}

// ComposeAll composites every assigned placement of the frame onto a
// copy of the base image, in placement order. Later placements paint
// on top of earlier ones where quads overlap; unassigned placements
// are skipped silently.
//
// Partial-failure policy: a placement whose creative cannot be
// resolved is skipped and recorded on the output. ComposeAll fails
// outright only when the frame is invalid, no assignment references an
// existing placement, or every assigned placement failed
// (ErrAllPlacementsFailed, wrapping the asset error).
func ComposeAll(ctx context.Context, base *Pixmap, frame *Frame, assignments []PlacementAssignment, src CreativeSource, opts CompositeOptions) (*ComposeOutput, error) {
	if err := ValidateFrame(frame); err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: frame %s", ErrNoAssignments, frame.ID)
	}

	byIndex := make(map[int]string, len(assignments))
	for _, a := range assignments {
		if a.PlacementIndex < 0 || a.PlacementIndex >= len(frame.Placements) {
			return nil, fmt.Errorf("%w: frame %s has no placement %d", ErrNoAssignments, frame.ID, a.PlacementIndex)
		}
		byIndex[a.PlacementIndex] = a.CreativeID
	}

	out := &ComposeOutput{Image: base.Clone()}
	var firstErr error

	for i, pl := range frame.Placements {
		creativeID, assigned := byIndex[i]
		if !assigned {
			continue
		}

		creative, err := src.Creative(ctx, creativeID)
		if err == nil {
			err = Composite(out.Image, pl.Quad, creative, opts)
		}
		if err != nil {
			Logger().Warn("placement skipped",
				slog.String("frame", frame.ID),
				slog.Int("placement", i),
				slog.String("creative", creativeID),
				slog.String("reason", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			out.Skipped = append(out.Skipped, SkippedPlacement{
				Index:  i,
				Label:  pl.Label,
				Reason: err.Error(),
			})
			continue
		}

		Logger().Debug("placement composited",
			slog.String("frame", frame.ID),
			slog.Int("placement", i),
			slog.String("creative", creativeID))
		out.Composited = append(out.Composited, i)
	}

	if len(out.Composited) == 0 {
		return nil, fmt.Errorf("%w: frame %s: %w", ErrAllPlacementsFailed, frame.ID, firstErr)
	}
	return out, nil
}

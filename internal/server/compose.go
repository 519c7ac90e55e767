package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/adframe/mockup"
	"github.com/adframe/mockup/internal/catalog"
)

// composeRequest is the wire form of a single-mockup request. Either
// assignments or a creativeId (applied to every placement) must be
// given.
type composeRequest struct {
	FrameID     string                       `json:"frameId"`
	CreativeID  string                       `json:"creativeId,omitempty"`
	Assignments []mockup.PlacementAssignment `json:"assignments,omitempty"`
	Opacity     int                          `json:"opacity,omitempty"`
	Format      string                       `json:"format,omitempty"`
	Blend       mockup.BlendMode             `json:"blend,omitempty"`
	Preview     bool                         `json:"preview,omitempty"`
}

// Compose generates one mockup and responds with the encoded image.
// With preview set, the downscaled PNG thumbnail is returned instead.
func (h *Handler) Compose(c fiber.Ctx) error {
	var req composeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	if req.FrameID == "" {
		return badRequest(c, "frameId required")
	}

	frame, err := h.store.Frame(c.RequestCtx(), req.FrameID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return notFound(c)
		}
		return serverError(c, err)
	}

	assignments := req.Assignments
	if len(assignments) == 0 {
		if req.CreativeID == "" {
			return badRequest(c, "assignments or creativeId required")
		}
		for i := range frame.Placements {
			assignments = append(assignments, mockup.PlacementAssignment{
				PlacementIndex: i,
				CreativeID:     req.CreativeID,
			})
		}
	}

	result, err := h.service.Compose(c.RequestCtx(), mockup.CompositeRequest{
		Frame:       frame,
		Assignments: assignments,
		Opacity:     req.Opacity,
		Format:      req.Format,
		Blend:       req.Blend,
		Thumbnail:   req.Preview,
	})
	if err != nil {
		switch {
		case errors.Is(err, mockup.ErrInvalidQuad),
			errors.Is(err, mockup.ErrUnsupportedFormat),
			errors.Is(err, mockup.ErrNoAssignments),
			errors.Is(err, mockup.ErrNoPlacements):
			return badRequest(c, err.Error())
		case errors.Is(err, mockup.ErrAssetUnavailable),
			errors.Is(err, mockup.ErrAllPlacementsFailed):
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		default:
			return serverError(c, err)
		}
	}

	if req.Preview {
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(result.ThumbnailBytes)
	}

	if result.Format == "png" {
		c.Set(fiber.HeaderContentType, "image/png")
	} else {
		c.Set(fiber.HeaderContentType, "image/jpeg")
	}
	if n := len(result.Skipped); n > 0 {
		// Partial success: the mockup is usable but some placements
		// kept their base pixels.
		skipped, _ := json.Marshal(result.Skipped)
		c.Set("X-Skipped-Placements", string(skipped))
	}
	return c.Send(result.ImageBytes)
}

// batchRequest is the wire form of a bulk job.
type batchRequest struct {
	Items       []batchItem      `json:"items"`
	CreativeID  string           `json:"creativeId"`
	Concurrency int              `json:"concurrency,omitempty"`
	Opacity     int              `json:"opacity,omitempty"`
	Format      string           `json:"format,omitempty"`
	Blend       mockup.BlendMode `json:"blend,omitempty"`
}

type batchItem struct {
	FrameID    string                       `json:"frameId"`
	CreativeID string                       `json:"creativeId,omitempty"`
	Overrides  []mockup.PlacementAssignment `json:"overrides,omitempty"`
}

// Batch runs a bulk job and streams NDJSON progress events followed by
// a terminal line carrying all item results (image bytes excluded; the
// caller re-fetches individual mockups via /compose).
func (h *Handler) Batch(c fiber.Ctx) error {
	var req batchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	if len(req.Items) == 0 {
		return badRequest(c, "items required")
	}
	if req.Concurrency == 0 {
		req.Concurrency = h.batchConcurrency
	}

	items := make([]mockup.BatchItem, 0, len(req.Items))
	for _, it := range req.Items {
		frame, err := h.store.Frame(c.RequestCtx(), it.FrameID)
		if err != nil {
			// An unknown frame id still occupies its batch slot: the
			// runner records it as a per-item failure instead of
			// rejecting the whole job.
			frame = &mockup.Frame{ID: it.FrameID}
		}
		items = append(items, mockup.BatchItem{
			Frame:      frame,
			CreativeID: it.CreativeID,
			Overrides:  it.Overrides,
		})
	}

	ctx := c.RequestCtx()
	c.Set(fiber.HeaderContentType, "application/x-ndjson")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		events := make(chan mockup.ProgressEvent, len(items)+1)
		done := make(chan []mockup.BatchItemResult, 1)

		go func() {
			done <- h.service.RunBatch(ctx, mockup.BatchRequest{
				Items:       items,
				CreativeID:  req.CreativeID,
				Concurrency: req.Concurrency,
				Opacity:     req.Opacity,
				Format:      req.Format,
				Blend:       req.Blend,
			}, events)
		}()

		enc := json.NewEncoder(w)
		for ev := range events {
			if enc.Encode(ev) != nil {
				return
			}
			if w.Flush() != nil {
				return
			}
		}
		results := <-done
		_ = enc.Encode(fiber.Map{"results": results})
		_ = w.Flush()
	})
}

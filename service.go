package mockup

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
)

// ImageSource resolves image references (URLs or storage keys) to
// decoded pixel buffers. Used for frame base photos.
// Implementations must be safe for concurrent use.
type ImageSource interface {
	Image(ctx context.Context, ref string) (*Pixmap, error)
}

// CompositeRequest is a single-mockup request: one frame, one set of
// placement assignments, one output encoding.
type CompositeRequest struct {
	Frame       *Frame                `json:"frame"`
	Assignments []PlacementAssignment `json:"assignments"`

	// Opacity is the creative opacity, 1-100. Zero means unset and
	// defaults to 100.
	Opacity int `json:"opacity,omitempty"`

	// Format is the output encoding, "png" (default) or "jpg".
	Format string `json:"format,omitempty"`

	// Blend selects the compositing blend mode.
	Blend BlendMode `json:"blend,omitempty"`

	// Thumbnail requests a downscaled PNG preview alongside the full
	// output.
	Thumbnail bool `json:"thumbnail,omitempty"`
}

// CompositeResult is the outcome of a successful composite. Width and
// Height always equal the frame's dimensions.
type CompositeResult struct {
	ImageBytes []byte `json:"-"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`

	// Skipped lists assigned placements left out because their
	// creative could not be resolved (partial success).
	Skipped []SkippedPlacement `json:"skipped,omitempty"`

	// ThumbnailBytes holds the PNG preview when the request asked for
	// one.
	ThumbnailBytes []byte `json:"-"`
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// ItemTimeout bounds one composite end to end (asset fetch +
	// compositing + encode) so a stuck fetch cannot stall a batch.
	// Zero means DefaultItemTimeout.
	ItemTimeout time.Duration

	// ThumbnailWidth is the pixel width of requested previews; height
	// follows the aspect ratio. Zero means DefaultThumbnailWidth.
	ThumbnailWidth int
}

// Service defaults.
const (
	DefaultItemTimeout    = 30 * time.Second
	DefaultThumbnailWidth = 320
)

// Service validates composite requests, resolves assets, runs the
// composer and encodes results. It is the unit the batch runner
// invokes once per item, and is safe for concurrent use.
type Service struct {
	frames    ImageSource
	creatives CreativeSource
	timeout   time.Duration
	thumbW    int
}

// NewService creates a Service over the given asset sources.
func NewService(frames ImageSource, creatives CreativeSource, opts ServiceOptions) *Service {
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = DefaultItemTimeout
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = DefaultThumbnailWidth
	}
	return &Service{
		frames:    frames,
		creatives: creatives,
		timeout:   opts.ItemTimeout,
		thumbW:    opts.ThumbnailWidth,
	}
}

// Compose runs one mockup request end to end: validate, fetch the
// frame photo, composite all assigned placements, encode.
func (s *Service) Compose(ctx context.Context, req CompositeRequest) (*CompositeResult, error) {
	if req.Frame == nil {
		return nil, fmt.Errorf("%w: request has no frame", ErrNoPlacements)
	}
	format := req.Format
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "jpg" && format != "jpeg" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	opacity := req.Opacity
	if opacity == 0 {
		opacity = 100
	}
	if opacity < 0 || opacity > 100 {
		return nil, fmt.Errorf("mockup: opacity %d out of range 0-100", req.Opacity)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	frame := *req.Frame
	NormalizeFrame(&frame)

	base, err := s.frames.Image(ctx, frame.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %s: %v", ErrAssetUnavailable, frame.ID, err)
	}
	// Frame records created before the dimensions were captured carry
	// zero width/height; fill them from the decoded photo.
	if frame.Width == 0 && frame.Height == 0 {
		frame.Width = base.Width()
		frame.Height = base.Height()
	}

	start := time.Now()
	out, err := ComposeAll(ctx, base, &frame, req.Assignments, s.creatives, CompositeOptions{
		Opacity: opacity,
		Blend:   req.Blend,
	})
	if err != nil {
		return nil, err
	}

	encoded, err := out.Image.Encode(format)
	if err != nil {
		return nil, err
	}

	result := &CompositeResult{
		ImageBytes: encoded,
		Format:     format,
		Width:      out.Image.Width(),
		Height:     out.Image.Height(),
		Skipped:    out.Skipped,
	}

	if req.Thumbnail {
		thumb, err := s.encodeThumbnail(out.Image)
		if err != nil {
			return nil, err
		}
		result.ThumbnailBytes = thumb
	}

	Logger().Debug("composite finished",
		slog.String("frame", frame.ID),
		slog.Int("placements", len(out.Composited)),
		slog.Int("skipped", len(out.Skipped)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// encodeThumbnail downsamples the mockup to the configured preview
// width and encodes it as PNG.
func (s *Service) encodeThumbnail(img *Pixmap) ([]byte, error) {
	thumb := imaging.Resize(img.ToImage(), s.thumbW, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("mockup: encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

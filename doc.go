// Package mockup generates photorealistic advertising mockups by
// compositing rectangular creative images onto quadrilateral regions
// ("placements") of physical-location photographs ("frames").
//
// # Overview
//
// The package is organized in layers, leaves first:
//
//   - Geometry: Point, Quad, homography solve/invert (quad.go, homography.go)
//   - Compositing: perspective warp and alpha blend of one creative
//     into one quad (composite.go)
//   - Composer: multi-placement z-ordered compositing over a frame (composer.go)
//   - Service: request validation, asset resolution, encoding (service.go)
//   - Batch: bounded-concurrency fan-out with progress events (batch.go)
//
// # Quick Start
//
//	base, _ := mockup.DecodeBytes(framePNG)
//	creative, _ := mockup.DecodeBytes(adJPEG)
//
//	quad := mockup.Quad{
//	    mockup.Pt(80, 60), mockup.Pt(720, 100),
//	    mockup.Pt(680, 540), mockup.Pt(120, 500),
//	}
//	err := mockup.Composite(base, quad, creative, mockup.CompositeOptions{Opacity: 100})
//
// # Coordinate System
//
// Standard raster coordinates: origin (0,0) at top-left, X increases
// right, Y increases down. Quad corners are ordered top-left, top-right,
// bottom-right, bottom-left; any consistent winding of a simple
// (non-self-intersecting) quad is accepted.
package mockup

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)

// Command mockupdemo renders a synthetic frame with two placements and
// composites a generated creative into both, saving the result as PNG.
// Useful for eyeballing warp quality without a running server.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/adframe/mockup"
	"github.com/adframe/mockup/internal/assets"
)

func main() {
	out := "mockup_demo.png"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	base := mockup.NewPixmap(800, 600)
	base.Fill(color.NRGBA{R: 180, G: 180, B: 185, A: 255})

	creative := checkerboard(400, 300)

	store := assets.NewMemStore()
	store.Put("frame.png", base)

	frame := &mockup.Frame{
		ID:       "demo",
		ImageRef: "frame.png",
		Width:    800,
		Height:   600,
		Placements: []mockup.Placement{
			{
				Label: "gable flat",
				Quad:  mockup.RectQuad(60, 40, 320, 240),
			},
			{
				Label: "scaffold skewed",
				Quad: mockup.Quad{
					mockup.Pt(440, 80),
					mockup.Pt(760, 140),
					mockup.Pt(720, 520),
					mockup.Pt(470, 460),
				},
			},
		},
	}

	service := mockup.NewService(store, staticCreative{creative}, mockup.ServiceOptions{})
	result, err := service.Compose(context.Background(), mockup.CompositeRequest{
		Frame: frame,
		Assignments: []mockup.PlacementAssignment{
			{PlacementIndex: 0, CreativeID: "demo-creative"},
			{PlacementIndex: 1, CreativeID: "demo-creative"},
		},
	})
	if err != nil {
		log.Fatalf("compose: %v", err)
	}

	if err := os.WriteFile(out, result.ImageBytes, 0o644); err != nil {
		log.Fatalf("write %s: %v", out, err)
	}
	fmt.Printf("wrote %s (%dx%d, %d bytes)\n", out, result.Width, result.Height, len(result.ImageBytes))
}

// staticCreative serves the same pixmap for every creative id.
type staticCreative struct {
	pm *mockup.Pixmap
}

func (s staticCreative) Creative(context.Context, string) (*mockup.Pixmap, error) {
	return s.pm, nil
}

// checkerboard builds a red/white checkerboard creative so warp
// distortion is visible at a glance.
func checkerboard(w, h int) *mockup.Pixmap {
	pm := mockup.NewPixmap(w, h)
	const cell = 25
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				pm.SetRGBA(x, y, 200, 30, 30, 255)
			} else {
				pm.SetRGBA(x, y, 245, 245, 245, 255)
			}
		}
	}
	return pm
}

// Package server exposes the mockup engine over HTTP: catalog CRUD,
// single composites and streaming batch jobs.
package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/adframe/mockup"
	"github.com/adframe/mockup/internal/catalog"
)

// Handler carries the server's dependencies.
type Handler struct {
	store   *catalog.Store
	service *mockup.Service

	// batchConcurrency is applied to batch requests that do not set
	// their own; zero falls through to mockup.DefaultBatchConcurrency.
	batchConcurrency int
}

// New creates a Handler over the given catalog and composite service.
func New(store *catalog.Store, service *mockup.Service, batchConcurrency int) *Handler {
	return &Handler{store: store, service: service, batchConcurrency: batchConcurrency}
}

// Register mounts all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Post("/frames", h.CreateFrame)
	api.Get("/frames", h.ListFrames)
	api.Get("/frames/:id", h.GetFrame)
	api.Delete("/frames/:id", h.DeleteFrame)
	api.Post("/creatives", h.CreateCreative)
	api.Get("/creatives", h.ListCreatives)
	api.Post("/compose", h.Compose)
	api.Post("/batch", h.Batch)
}

// Health reports liveness.
func (h *Handler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": mockup.Version})
}

// CreateFrame stores a frame record. Legacy single-placement payloads
// are normalized on the way in.
func (h *Handler) CreateFrame(c fiber.Ctx) error {
	var frame mockup.Frame
	if err := c.Bind().JSON(&frame); err != nil {
		return badRequest(c, "invalid json")
	}
	mockup.NormalizeFrame(&frame)
	if err := mockup.ValidateFrame(&frame); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.store.PutFrame(c.RequestCtx(), &frame); err != nil {
		return serverError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(frame)
}

// ListFrames returns all frame records.
func (h *Handler) ListFrames(c fiber.Ctx) error {
	frames, err := h.store.ListFrames(c.RequestCtx())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"frames": frames})
}

// GetFrame returns one frame record.
func (h *Handler) GetFrame(c fiber.Ctx) error {
	frame, err := h.store.Frame(c.RequestCtx(), c.Params("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return notFound(c)
		}
		return serverError(c, err)
	}
	return c.JSON(frame)
}

// DeleteFrame removes one frame record.
func (h *Handler) DeleteFrame(c fiber.Ctx) error {
	if err := h.store.DeleteFrame(c.RequestCtx(), c.Params("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return notFound(c)
		}
		return serverError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateCreative stores a creative record.
func (h *Handler) CreateCreative(c fiber.Ctx) error {
	var creative mockup.Creative
	if err := c.Bind().JSON(&creative); err != nil {
		return badRequest(c, "invalid json")
	}
	if creative.ImageRef == "" {
		return badRequest(c, "imageRef required")
	}
	if err := h.store.PutCreative(c.RequestCtx(), &creative); err != nil {
		return serverError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(creative)
}

// ListCreatives returns all creative records.
func (h *Handler) ListCreatives(c fiber.Ctx) error {
	creatives, err := h.store.ListCreatives(c.RequestCtx())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"creatives": creatives})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c fiber.Ctx) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "not found"})
}

func serverError(c fiber.Ctx, err error) error {
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

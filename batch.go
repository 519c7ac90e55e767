package mockup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBatchConcurrency is the worker-pool size used when a batch
// request does not specify one. Kept small to respect downstream
// asset-store rate limits; each in-flight item also holds a full
// decoded frame photo in memory.
const DefaultBatchConcurrency = 4

// BatchItem is one frame to composite within a batch.
type BatchItem struct {
	// Frame is the resolved frame record (the caller looks records up;
	// the core only reads them).
	Frame *Frame `json:"frame"`

	// CreativeID overrides the batch-wide creative for this frame.
	CreativeID string `json:"creativeId,omitempty"`

	// Overrides, when set, replaces the derived assignments entirely
	// (per-placement creative selection for multi-placement frames).
	Overrides []PlacementAssignment `json:"overrides,omitempty"`
}

// BatchRequest fans one creative (or a per-frame override) out across
// many frames.
type BatchRequest struct {
	Items []BatchItem `json:"items"`

	// CreativeID is the shared creative applied to every placement of
	// every frame that has no override.
	CreativeID string `json:"creativeId"`

	// Concurrency bounds the worker pool. Zero means
	// DefaultBatchConcurrency.
	Concurrency int `json:"concurrency,omitempty"`

	Opacity int       `json:"opacity,omitempty"`
	Format  string    `json:"format,omitempty"`
	Blend   BlendMode `json:"blend,omitempty"`
}

// BatchItemResult is the outcome of one batch item. Exactly one result
// is produced per submitted item, success or failure.
type BatchItemResult struct {
	FrameID    string             `json:"frameId"`
	Success    bool               `json:"success"`
	ImageBytes []byte             `json:"-"`
	Format     string             `json:"format,omitempty"`
	Skipped    []SkippedPlacement `json:"skipped,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ProgressEvent reports batch progress. Processed is monotonic: after
// N items have resolved, the latest event's Processed equals N. The
// terminal event has Terminal set and carries no item fields.
type ProgressEvent struct {
	JobID     string `json:"jobId"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	FrameID   string `json:"frameId,omitempty"`
	Status    string `json:"status,omitempty"` // "ok" or "failed"
	Terminal  bool   `json:"terminal,omitempty"`
}

// RunBatch processes every item with a bounded worker pool, isolating
// per-item failures: one frame's fetch, geometry or encode error is
// recorded as a failed result and never aborts the batch. The returned
// slice always has exactly len(req.Items) entries, in submission
// order.
//
// Progress events are sent to events as items resolve; RunBatch closes
// the channel before returning. Pass nil to skip progress reporting.
// Event emission never blocks past cancellation: once ctx is done,
// remaining events are dropped (the consumer is gone).
//
// Cancelling ctx stops new items from starting; in-flight items run to
// completion and items never started resolve as failures carrying the
// context error.
func (s *Service) RunBatch(ctx context.Context, req BatchRequest, events chan<- ProgressEvent) []BatchItemResult {
	total := len(req.Items)
	results := make([]BatchItemResult, total)
	if events != nil {
		defer close(events)
	}
	if total == 0 {
		return results
	}

	workers := req.Concurrency
	if workers <= 0 {
		workers = DefaultBatchConcurrency
	}
	if workers > total {
		workers = total
	}

	jobID := uuid.NewString()
	start := time.Now()
	Logger().Info("batch started",
		slog.String("job", jobID),
		slog.Int("items", total),
		slog.Int("workers", workers))

	// progressMu serializes completion accounting and event emission
	// so Processed values reach the consumer in increasing order.
	var progressMu sync.Mutex
	processed := 0

	emit := func(ev ProgressEvent) {
		if events == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	finish := func(i int, res BatchItemResult) {
		results[i] = res
		status := "ok"
		if !res.Success {
			status = "failed"
		}
		progressMu.Lock()
		processed++
		emit(ProgressEvent{
			JobID:     jobID,
			Processed: processed,
			Total:     total,
			FrameID:   res.FrameID,
			Status:    status,
		})
		progressMu.Unlock()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				finish(i, s.runItem(ctx, req, req.Items[i]))
			}
		}()
	}

dispatch:
	for i := range req.Items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Stop starting new items; everything not yet dispatched
			// resolves as a failure.
			for j := i; j < total; j++ {
				select {
				case jobs <- j: // a worker freed up in the meantime
				default:
					finish(j, BatchItemResult{
						FrameID: itemFrameID(req.Items[j]),
						Success: false,
						Error:   ctx.Err().Error(),
					})
				}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	failures := 0
	for i := range results {
		if !results[i].Success {
			failures++
		}
	}
	Logger().Info("batch finished",
		slog.String("job", jobID),
		slog.Int("items", total),
		slog.Int("failures", failures),
		slog.Duration("elapsed", time.Since(start)))

	emit(ProgressEvent{
		JobID:     jobID,
		Processed: total,
		Total:     total,
		Terminal:  true,
	})
	return results
}

// runItem runs the single-job service for one batch item, converting
// any error into a failed result.
func (s *Service) runItem(ctx context.Context, req BatchRequest, item BatchItem) BatchItemResult {
	frameID := itemFrameID(item)
	if item.Frame == nil {
		return BatchItemResult{FrameID: frameID, Success: false, Error: "item has no frame"}
	}

	res, err := s.Compose(ctx, CompositeRequest{
		Frame:       item.Frame,
		Assignments: itemAssignments(req, item),
		Opacity:     req.Opacity,
		Format:      req.Format,
		Blend:       req.Blend,
	})
	if err != nil {
		return BatchItemResult{FrameID: frameID, Success: false, Error: err.Error()}
	}
	return BatchItemResult{
		FrameID:    frameID,
		Success:    true,
		ImageBytes: res.ImageBytes,
		Format:     res.Format,
		Skipped:    res.Skipped,
	}
}

// itemAssignments derives the placement assignments for one item:
// explicit overrides win; otherwise the item's (or the batch's) single
// creative is assigned to every placement of the frame.
func itemAssignments(req BatchRequest, item BatchItem) []PlacementAssignment {
	if len(item.Overrides) > 0 {
		return item.Overrides
	}
	creativeID := item.CreativeID
	if creativeID == "" {
		creativeID = req.CreativeID
	}

	frame := *item.Frame
	NormalizeFrame(&frame)
	assignments := make([]PlacementAssignment, 0, len(frame.Placements))
	for i := range frame.Placements {
		assignments = append(assignments, PlacementAssignment{
			PlacementIndex: i,
			CreativeID:     creativeID,
		})
	}
	return assignments
}

func itemFrameID(item BatchItem) string {
	if item.Frame == nil {
		return ""
	}
	return item.Frame.ID
}

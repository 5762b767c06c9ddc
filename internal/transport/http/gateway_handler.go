package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "formgate/internal/errors"
	"formgate/internal/fanout"
	"formgate/internal/infrastructure"
	"formgate/internal/multipart"
	"formgate/internal/services"
)

// GatewayHandler handles multipart fan-out requests: the body is decoded
// into form fields, each field is dispatched to its registered downstream
// handler, and the responses are merged into one streaming reply.
type GatewayHandler struct {
	dispatch     *services.DispatchService
	split        fanout.SplitOptions
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.GatewayMetrics
}

// NewGatewayHandler creates a new gateway handler. metrics may be nil when
// telemetry is disabled.
func NewGatewayHandler(
	dispatch *services.DispatchService,
	split fanout.SplitOptions,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
	metrics *infrastructure.GatewayMetrics,
) *GatewayHandler {
	return &GatewayHandler{
		dispatch:     dispatch,
		split:        split,
		logger:       logger.With(slog.String("handler", "gateway")),
		errorHandler: errorHandler,
		metrics:      metrics,
	}
}

// Routes returns the router for gateway endpoints
func (h *GatewayHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Process)
	r.Post("/inspect", h.Inspect)
	return r
}

// Process handles POST /api/gateway
func (h *GatewayHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.countRequest(ctx)

	subs, order, err := fanout.Split(r, h.split)
	if err != nil {
		h.countParseError(ctx)
		h.errorHandler.HandleError(w, r, h.splitError(err))
		return
	}
	h.recordParts(ctx, len(order))

	responses, err := h.dispatch.Dispatch(ctx, subs, order)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.dispatchError(err))
		return
	}

	merged, err := fanout.Merge(responses)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.DispatchFailedError(err))
		return
	}

	w.Header().Set("Content-Type", merged.ContentType)
	w.WriteHeader(http.StatusOK)
	written, err := io.Copy(w, merged.Body)
	if err != nil {
		// Headers are gone; all we can do is log.
		h.logger.ErrorContext(ctx, "streaming merged response failed",
			slog.String("error", err.Error()),
			slog.Int64("bytes_written", written))
		return
	}
	h.countMergedBytes(ctx, written)

	h.logger.InfoContext(ctx, "gateway request completed",
		slog.Int("parts", len(order)),
		slog.Int64("merged_bytes", written))
}

// partInfo describes one decoded form field for inspection
type partInfo struct {
	Field         string `json:"field"`
	ContentType   string `json:"content_type,omitempty"`
	SizeBytes     int64  `json:"size_bytes"`
	HandlerExists bool   `json:"handler_exists"`
}

// Inspect handles POST /api/gateway/inspect. It decodes the body the same
// way Process does but reports part metadata instead of dispatching.
func (h *GatewayHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.countRequest(ctx)

	subs, order, err := fanout.Split(r, h.split)
	if err != nil {
		h.countParseError(ctx)
		h.errorHandler.HandleError(w, r, h.splitError(err))
		return
	}
	h.recordParts(ctx, len(order))

	parts := make([]partInfo, 0, len(order))
	for _, name := range order {
		sub := subs[name]
		parts = append(parts, partInfo{
			Field:         name,
			ContentType:   sub.Header.Get("Content-Type"),
			SizeBytes:     sub.ContentLength,
			HandlerExists: h.dispatch.Registered(name),
		})
	}

	render.JSON(w, r, map[string]interface{}{
		"count": len(parts),
		"parts": parts,
	})
}

// splitError maps a decode failure onto the API error taxonomy. The
// underlying sentinel picks the status; everything else is a 400.
func (h *GatewayHandler) splitError(err error) error {
	switch {
	case errors.Is(err, multipart.ErrBodyTooLarge):
		return apierrors.ErrPayloadTooLarge
	case errors.Is(err, multipart.ErrInvalidContentType):
		return apierrors.ErrUnsupportedMediaType
	default:
		return apierrors.InvalidMultipartError(err)
	}
}

// dispatchError maps dispatch failures. Context errors pass through so the
// error handler renders them as timeouts.
func (h *GatewayHandler) dispatchError(err error) error {
	switch {
	case errors.Is(err, services.ErrHandlerNotFound):
		return apierrors.New(http.StatusNotFound, "HANDLER_NOT_FOUND", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	default:
		return apierrors.DispatchFailedError(err)
	}
}

func (h *GatewayHandler) countRequest(ctx context.Context) {
	if h.metrics != nil {
		h.metrics.RequestsTotal.Add(ctx, 1)
	}
}

func (h *GatewayHandler) countParseError(ctx context.Context) {
	if h.metrics != nil {
		h.metrics.ParseErrors.Add(ctx, 1)
	}
}

func (h *GatewayHandler) recordParts(ctx context.Context, n int) {
	if h.metrics != nil {
		h.metrics.PartsPerRequest.Record(ctx, int64(n))
	}
}

func (h *GatewayHandler) countMergedBytes(ctx context.Context, n int64) {
	if h.metrics != nil {
		h.metrics.MergedBytes.Add(ctx, n)
	}
}

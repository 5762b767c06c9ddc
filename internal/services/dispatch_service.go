package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"formgate/internal/fanout"
)

// ErrHandlerNotFound reports a sub-request whose field name has no
// registered downstream handler. Nothing is dispatched when any name is
// unknown.
var ErrHandlerNotFound = errors.New("no handler registered for field")

// Registry maps field names to the downstream handlers their sub-requests
// are routed to. Registration normally happens once at startup, but the
// registry is safe for concurrent use so handlers can be added while the
// server runs.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]http.Handler)}
}

// Register binds a field name to a handler, replacing any previous binding.
func (r *Registry) Register(name string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (http.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered field names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DispatchService routes sub-requests to their registered handlers and
// collects the responses for merging.
type DispatchService struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatchService creates a dispatch service with an injected logger.
func NewDispatchService(registry *Registry, logger *slog.Logger) *DispatchService {
	return &DispatchService{
		registry: registry,
		logger:   logger.With(slog.String("component", "dispatch_service")),
	}
}

// Registered reports whether a handler is bound to the field name.
func (s *DispatchService) Registered(name string) bool {
	_, ok := s.registry.Lookup(name)
	return ok
}

// Dispatch runs each sub-request against the handler registered for its
// field name and returns the captured responses in the given order. All
// field names are resolved before anything runs, so an unknown name means
// zero handlers were invoked. Handlers for different fields run
// concurrently; each sees the group context, so one failure cancels the
// rest.
func (s *DispatchService) Dispatch(ctx context.Context, subs map[string]*http.Request, order []string) ([]fanout.NamedResponse, error) {
	handlers := make([]http.Handler, len(order))
	for i, name := range order {
		h, ok := s.registry.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrHandlerNotFound, name)
		}
		handlers[i] = h
	}

	start := time.Now()
	results := make([]fanout.NamedResponse, len(order))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range order {
		sub, ok := subs[name]
		if !ok {
			return nil, fmt.Errorf("missing sub-request for field %q", name)
		}
		g.Go(func() error {
			rec := newResponseBuffer()
			handlers[i].ServeHTTP(rec, sub.WithContext(gctx))
			results[i] = fanout.NamedResponse{
				Name:       name,
				StatusCode: rec.Status(),
				Header:     rec.header,
				Body:       bytes.NewReader(rec.body.Bytes()),
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "dispatched sub-requests",
		slog.Int("count", len(order)),
		slog.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// responseBuffer captures a downstream handler's response in memory so it
// can be merged after all handlers finish.
type responseBuffer struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header)}
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.body.Write(p)
}

// Status returns the written status code, defaulting to 200 like
// net/http does for handlers that never call WriteHeader.
func (b *responseBuffer) Status() int {
	if !b.wroteHeader {
		return http.StatusOK
	}
	return b.status
}

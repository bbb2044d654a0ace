// Package shutdown coordinates graceful termination of a cataloging run.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels the run context on SIGINT/SIGTERM and then runs the
// registered cleanups (cache flush, report write, log close) exactly
// once. A second signal exits immediately without cleanup.
type Handler struct {
	ctx        context.Context
	cancel     context.CancelFunc
	once       sync.Once
	cleanupFns []func()
	mu         sync.Mutex
}

// New creates a shutdown handler.
func New() *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the context cancelled on shutdown. The pipeline checks
// it between files, so cancellation never strands a half-moved file.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a cleanup function to run on shutdown, in
// registration order.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen starts watching for shutdown signals.
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		go h.Shutdown()
		<-sigChan
		os.Exit(1)
	}()
}

// Shutdown cancels the context and runs cleanups. Safe to call from both
// the signal path and the normal exit path.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := h.cleanupFns
		h.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	})
}

// Package event is an in-process publish/subscribe dispatcher.
//
//	event.Listen("order.placed", func(ctx context.Context, payload any) error { ... })
//	event.Fire(ctx, "order.placed", OrderPlaced{OrderID: 7})
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/cupcakery/storefront/pkg/logger"
)

// Handler receives an event payload. A returned error is logged; it never
// reaches the code that fired the event.
type Handler func(ctx context.Context, payload any) error

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

func snapshot(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[name]))
	copy(hs, handlers[name])
	return hs
}

// Fire runs every listener synchronously, in registration order.
func Fire(ctx context.Context, name string, payload any) {
	for _, h := range snapshot(name) {
		call(ctx, name, h, payload)
	}
}

// FireAsync runs every listener on its own goroutine and returns at once.
// Listeners get a context detached from ctx's cancellation.
func FireAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range snapshot(name) {
		go call(detached, name, h, payload)
	}
}

func call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", fmt.Sprint(rec))
		}
	}()
	if err := h(ctx, payload); err != nil {
		logger.WithCtx(ctx).Error("event: listener failed", "event", name, "error", err)
	}
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}

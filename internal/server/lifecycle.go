// Package server runs the game server's long-lived components: the HTTP listener and the
// periodic maintenance tickers. It starts them in order and stops them in reverse on
// SIGINT or SIGTERM.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one component of the running game server, such as the HTTP listener or a
// maintenance ticker.
type Service interface {
	// Start runs the component and blocks until Stop is called or it fails.
	Start() error
	// Stop asks a running Start to return.
	Stop()
}

// FuncService turns a pair of closures into a Service. main uses it for the HTTP listener.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

func (f *FuncService) Start() error { return f.StartFn() }

func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle owns the server's components from boot to shutdown.
type Lifecycle struct {
	logger *zap.Logger

	mu         sync.Mutex
	components []component
}

type component struct {
	name string
	svc  Service
}

// NewLifecycle returns an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add appends a component. The name labels its log lines and wraps its start error.
//
// Precondition: name must be non-empty; svc must be non-nil; Run has not been called.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components = append(l.components, component{name: name, svc: svc})
}

// Run starts every component and blocks until SIGINT or SIGTERM arrives, ctx ends, or a
// component's Start returns an error. It then stops the components newest first.
//
// Postcondition: every component has been stopped. The returned error is the first start
// failure; a signal or cancellation returns nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	booted := time.Now()

	l.mu.Lock()
	comps := append([]component(nil), l.components...)
	l.mu.Unlock()

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failed := make(chan error, len(comps))
	for _, c := range comps {
		go l.launch(c, failed, cancel)
	}
	l.logger.Info("server components launched", zap.Int("components", len(comps)))

	<-ctx.Done()
	var runErr error
	select {
	case runErr = <-failed:
		l.logger.Error("component failed, shutting down", zap.Error(runErr))
	default:
		l.logger.Info("shutdown requested", zap.Error(context.Cause(ctx)))
	}

	l.stopAll(comps)
	l.logger.Info("server stopped", zap.Duration("uptime", time.Since(booted)))
	return runErr
}

func (l *Lifecycle) launch(c component, failed chan<- error, cancel context.CancelFunc) {
	l.logger.Info("component starting", zap.String("component", c.name))
	since := time.Now()
	if err := c.svc.Start(); err != nil {
		l.logger.Error("component exited with error",
			zap.String("component", c.name),
			zap.Duration("ran", time.Since(since)),
			zap.Error(err),
		)
		failed <- fmt.Errorf("service %s: %w", c.name, err)
		cancel()
	}
}

// stopAll stops comps newest first so the HTTP listener drains before the tickers behind it.
func (l *Lifecycle) stopAll(comps []component) {
	for i := len(comps) - 1; i >= 0; i-- {
		c := comps[i]
		since := time.Now()
		c.svc.Stop()
		l.logger.Info("component stopped",
			zap.String("component", c.name),
			zap.Duration("took", time.Since(since)),
		)
	}
}

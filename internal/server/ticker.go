package server

import (
	"sync"
	"time"
)

// Ticker runs a function on a fixed interval until stopped. It satisfies Service.
type Ticker struct {
	interval time.Duration
	tick     func()
	done     chan struct{}
	once     sync.Once
}

// NewTicker creates a Ticker calling tick every interval.
//
// Precondition: interval must be positive; tick must be non-nil.
func NewTicker(interval time.Duration, tick func()) *Ticker {
	return &Ticker{interval: interval, tick: tick, done: make(chan struct{})}
}

// Start calls tick on every interval until Stop is called.
func (t *Ticker) Start() error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return nil
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.done) })
}

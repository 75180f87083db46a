package engine

import (
	"context"
	"time"
)

// StatsObserver receives periodic engine statistics.
type StatsObserver interface {
	ObserveStats(st Stats)
}

// StatsObserverFunc adapts a function to the StatsObserver interface.
type StatsObserverFunc func(st Stats)

// ObserveStats calls f.
func (f StatsObserverFunc) ObserveStats(st Stats) { f(st) }

// Sampler periodically reads Engine.Stats and hands them to an observer.
// Each book side is read under its own lock, so sampling never stalls
// matching on other instruments.
type Sampler struct {
	interval time.Duration
	engine   *Engine
	observer StatsObserver
}

// NewSampler creates a Sampler reading e every interval.
func NewSampler(interval time.Duration, e *Engine, observer StatsObserver) *Sampler {
	return &Sampler{
		interval: interval,
		engine:   e,
		observer: observer,
	}
}

// Start launches the sampling goroutine. It takes one sample immediately
// and stops when ctx is cancelled.
func (s *Sampler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Sampler) tick() {
	s.observer.ObserveStats(s.engine.Stats())
}

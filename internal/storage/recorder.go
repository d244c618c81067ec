package storage

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"emergence/internal/event"
	"emergence/internal/monitor"
)

// RecorderBuffer is the number of events a Recorder holds before dropping.
const RecorderBuffer = 128

// Recorder is an event handler that writes anomalies and completed
// inflations to a HistoryStore. Writes happen on a background goroutine so
// the stepping context never waits on I/O. T is the router context type.
type Recorder[T any] struct {
	store  HistoryStore
	run    string
	logger *log.Logger

	mu      sync.RWMutex
	closed  bool
	ch      chan event.Event
	done    chan struct{}
	dropped atomic.Uint64
	written atomic.Uint64
}

// NewRecorder starts a recorder for run. A nil logger selects log.Default().
func NewRecorder[T any](store HistoryStore, run string, logger *log.Logger) *Recorder[T] {
	if logger == nil {
		logger = log.Default()
	}
	r := &Recorder[T]{
		store:  store,
		run:    run,
		logger: logger,
		ch:     make(chan event.Event, RecorderBuffer),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

// EventTypes implements event.Handler.
func (r *Recorder[T]) EventTypes() []event.Type {
	return []event.Type{event.AnomalyRaised, event.InflationEnded}
}

// HandleEvent implements event.Handler. It never blocks.
func (r *Recorder[T]) HandleEvent(_ T, ev event.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- ev:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder[T]) drain() {
	defer close(r.done)
	ctx := context.Background()
	for ev := range r.ch {
		var err error
		switch payload := ev.Payload.(type) {
		case monitor.Anomaly:
			err = r.store.AppendAnomaly(ctx, r.run, payload)
		case monitor.InflationEvent:
			err = r.store.AppendInflation(ctx, r.run, payload)
		default:
			continue
		}
		if err != nil {
			r.logger.Printf("history: %v", err)
			continue
		}
		r.written.Add(1)
	}
}

// Close stops accepting events and waits for queued writes to finish.
func (r *Recorder[T]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()
	<-r.done
}

// Written reports how many records were stored.
func (r *Recorder[T]) Written() uint64 { return r.written.Load() }

// Dropped reports how many events were discarded because the buffer was full.
func (r *Recorder[T]) Dropped() uint64 { return r.dropped.Load() }

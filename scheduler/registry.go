// Package scheduler owns the per-guild repeating poll timers. Every
// (guild, stream) pair gets an independent timer; there is no shared lock
// between streams or guilds.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"feedbot/models"

	log "github.com/sirupsen/logrus"
)

// Handler is one stream's poll handler. It runs to completion even if the
// timer is stopped mid-cycle; only future firings are cancelled.
type Handler func(ctx context.Context)

type timer struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// Registry tracks the active timers of a single guild, keyed by stream. The
// per-stream in-flight gate lives on the registry itself, not on the timer,
// so replacing or stopping a timer while its handler still runs cannot let a
// second cycle start for the same stream.
type Registry struct {
	guildID int64

	mu       sync.Mutex
	timers   map[models.Stream]*timer
	inFlight map[models.Stream]*atomic.Bool
}

// NewRegistry creates an empty registry for a guild.
func NewRegistry(guildID int64) *Registry {
	return &Registry{
		guildID:  guildID,
		timers:   map[models.Stream]*timer{},
		inFlight: map[models.Stream]*atomic.Bool{},
	}
}

// Start arms a repeating timer for the stream, replacing any existing one.
// A firing that arrives while the previous handler for the same stream is
// still running is skipped, never queued — including a handler started by a
// timer this call replaced.
func (r *Registry) Start(ctx context.Context, stream models.Stream, interval time.Duration, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked(stream)

	gate := r.gateLocked(stream)
	t := &timer{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}
	r.timers[stream] = t

	log.Infof("Starting interval for guild %d in %s for %s", r.guildID, interval, stream)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.ticker.Stop()
				return
			case <-t.stop:
				t.ticker.Stop()
				return
			case <-t.ticker.C:
				if !gate.CompareAndSwap(false, true) {
					log.Warnf("Skipping %s firing for guild %d, previous run still in flight", stream, r.guildID)
					continue
				}
				go func() {
					defer gate.Store(false)
					handler(ctx)
				}()
			}
		}
	}()
}

// RunNow executes fn immediately under the same per-stream gate the timer
// firings use. If a cycle for the stream is already running the call is
// skipped with a nil result, mirroring the skipped-never-queued timer rule.
func (r *Registry) RunNow(ctx context.Context, stream models.Stream, fn func(ctx context.Context) error) error {
	gate := r.gate(stream)
	if !gate.CompareAndSwap(false, true) {
		log.Warnf("Skipping manual %s run for guild %d, previous run still in flight", stream, r.guildID)
		return nil
	}
	defer gate.Store(false)

	return fn(ctx)
}

// Stop cancels the stream's timer. Stopping an unarmed stream is a no-op.
// The in-flight gate is left to the running handler to clear on completion.
func (r *Registry) Stop(stream models.Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked(stream)
}

// StopAll cancels every timer in the registry.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for stream := range r.timers {
		r.stopLocked(stream)
	}
}

func (r *Registry) stopLocked(stream models.Stream) {
	if t, ok := r.timers[stream]; ok {
		close(t.stop)
		delete(r.timers, stream)
	}
}

// gate returns the stream's persistent in-flight flag, creating it on first use.
func (r *Registry) gate(stream models.Stream) *atomic.Bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gateLocked(stream)
}

func (r *Registry) gateLocked(stream models.Stream) *atomic.Bool {
	gate, ok := r.inFlight[stream]
	if !ok {
		gate = &atomic.Bool{}
		r.inFlight[stream] = gate
	}
	return gate
}

// Package poller keeps a view's request snapshot fresh by re-listing on a
// fixed interval and on demand.
package poller

import (
	"context"
	"kidcheck/domain"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval     = 2 * time.Second
	DefaultRefreshDelay = 100 * time.Millisecond
)

type FetchFunc func(ctx context.Context) ([]domain.StatusRequest, error)

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithRefreshDelay(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.refreshDelay = d
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

// WithOnUpdate registers fn to receive every fresh snapshot. It runs on the poller goroutine.
func WithOnUpdate(fn func([]domain.StatusRequest)) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

type Poller struct {
	fetch        FetchFunc
	interval     time.Duration
	refreshDelay time.Duration
	log          logrus.FieldLogger
	onUpdate     func([]domain.StatusRequest)

	mu       sync.RWMutex
	snapshot []domain.StatusRequest
	loaded   bool
	issued   uint64
	applied  uint64

	refresh   chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(fetch FetchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:        fetch,
		interval:     DefaultInterval,
		refreshDelay: DefaultRefreshDelay,
		log:          logrus.StandardLogger(),
		snapshot:     []domain.StatusRequest{},
		refresh:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start loads once right away and then keeps polling until Stop or ctx ends.
// Calling it again, or after Stop, does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})

		p.mu.Lock()
		p.cancel = cancel
		p.done = done
		p.mu.Unlock()

		go p.run(ctx, done)
	})
}

// Stop cancels the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.startOnce.Do(func() {})

		p.mu.RLock()
		cancel, done := p.cancel, p.done
		p.mu.RUnlock()

		if cancel == nil {
			return
		}
		cancel()
		<-done
	})
}

// Refresh asks for a reload shortly. Bursts collapse into one fetch.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the last successful fetch.
func (p *Poller) Snapshot() []domain.StatusRequest {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.StatusRequest, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}

// Loaded reports whether at least one fetch has succeeded.
func (p *Poller) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Reload fetches synchronously and replaces the snapshot on success. A fetch
// that finishes after a newer one is dropped.
func (p *Poller) Reload(ctx context.Context) error {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	reqs, err := p.fetch(ctx)
	if err != nil {
		return err
	}
	p.replace(seq, reqs)
	return nil
}

func (p *Poller) replace(seq uint64, reqs []domain.StatusRequest) {
	next := make([]domain.StatusRequest, len(reqs))
	copy(next, reqs)

	p.mu.Lock()
	if seq < p.applied {
		p.mu.Unlock()
		return
	}
	p.applied = seq
	p.snapshot = next
	p.loaded = true
	p.mu.Unlock()

	if p.onUpdate != nil {
		view := make([]domain.StatusRequest, len(next))
		copy(view, next)
		p.onUpdate(view)
	}
}

func (p *Poller) load(ctx context.Context) {
	if err := p.Reload(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.WithError(err).Warn("poll failed, keeping previous snapshot")
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	p.load(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.load(ctx)
		case <-p.refresh:
			if timerC == nil {
				timer = time.NewTimer(p.refreshDelay)
				timerC = timer.C
			}
		case <-timerC:
			timer, timerC = nil, nil
			p.load(ctx)
		}
	}
}

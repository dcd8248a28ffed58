package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juststeveking/lodestone/internal/config"
	"github.com/juststeveking/lodestone/internal/store"
)

// Poller owns the repeating status poll for one game server.
//
// Every cycle runs in its own goroutine, so a request slower than the interval
// overlaps the next one. Each request takes a sequence number when issued and
// the store only accepts results newer than the last applied, so the latest
// issued poll wins regardless of completion order.
type Poller struct {
	checker  Checker
	store    *store.Store
	host     string
	port     int
	interval time.Duration
	logger   *slog.Logger

	seq     atomic.Uint64
	refresh chan struct{}

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller from the config, querying the configured status endpoint
func NewPoller(cfg *config.Config, logger *slog.Logger) (*Poller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d, err := cfg.Durations()
	if err != nil {
		return nil, err
	}

	checker := NewHTTPChecker(cfg.Endpoint, d.Timeout, logger)
	return New(checker, cfg.Server.Host, cfg.Server.Port, d.PollInterval, logger), nil
}

// New creates a poller around an arbitrary checker
func New(checker Checker, host string, port int, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		checker:  checker,
		store:    store.New(host),
		host:     host,
		port:     port,
		interval: interval,
		logger:   logger,
		refresh:  make(chan struct{}, 1),
		state:    StateIdle,
	}
}

// Store returns the slot the poller writes into
func (p *Poller) Store() *store.Store {
	return p.store
}

// Host returns the polled host
func (p *Poller) Host() string {
	return p.host
}

// Port returns the polled port
func (p *Poller) Port() int {
	return p.port
}

// State returns the current lifecycle state
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start polls immediately and then every interval until Stop is called or ctx
// is cancelled. It returns right away. Only the first call on an idle poller
// has any effect.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = StatePolling
	p.wg.Add(1)
	p.mu.Unlock()

	p.logger.Info("poller started",
		"host", p.host,
		"port", p.port,
		"interval", p.interval.String(),
	)

	go p.run(pollCtx)
}

// Refresh requests an extra poll outside the schedule. It is a no-op unless running.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle || p.state == StateStopped {
		return
	}

	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels the schedule and any in-flight request, then waits for all
// cycles to exit. No store update happens after Stop returns. Stop is
// idempotent and safe to call before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.state = StateStopped
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()

	if closer, ok := p.checker.(interface{ Close() }); ok {
		closer.Close()
	}

	p.logger.Info("poller stopped", "host", p.host)
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	p.spawn(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx)
		case <-p.refresh:
			p.spawn(ctx)
		}
	}
}

func (p *Poller) spawn(ctx context.Context) {
	seq := p.seq.Add(1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.cycle(ctx, seq)
	}()
}

// cycle performs one poll and applies its outcome unless it was superseded
func (p *Poller) cycle(ctx context.Context, seq uint64) {
	p.setState(StatePolling)

	outcome := p.checker.Check(ctx, p.host, p.port)

	if ctx.Err() != nil {
		p.logger.Debug("discarding result after stop", "seq", seq)
		return
	}

	if !p.store.Apply(seq, outcome) {
		p.logger.Debug("discarding stale result", "seq", seq, "kind", string(outcome.Kind))
		return
	}

	if outcome.OK() {
		p.setState(StateSuccess)
	} else {
		p.setState(StateFailure)
	}
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateStopped {
		p.state = s
	}
}

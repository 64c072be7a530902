package statereader

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/events"
)

// Poller periodically re-reads tracked pools and publishes the fresh state
// on the event bus so display consumers never query the chain themselves.
type Poller struct {
	reader   *Reader
	bus      *events.Bus
	interval time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	pools []solana.PublicKey
}

func NewPoller(reader *Reader, bus *events.Bus, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		reader:   reader,
		bus:      bus,
		interval: interval,
		logger:   logger.Named("state-poller"),
	}
}

// Track adds pool to the refresh set. Duplicates are ignored.
func (p *Poller) Track(pool solana.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.pools {
		if existing.Equals(pool) {
			return
		}
	}
	p.pools = append(p.pools, pool)
	p.logger.Debug("tracking pool", zap.String("pool", pool.String()))
}

// Untrack removes pool from the refresh set.
func (p *Poller) Untrack(pool solana.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.pools {
		if existing.Equals(pool) {
			p.pools = append(p.pools[:i], p.pools[i+1:]...)
			return
		}
	}
}

func (p *Poller) tracked() []solana.PublicKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]solana.PublicKey, len(p.pools))
	copy(out, p.pools)
	return out
}

// Run blocks, refreshing every tracked pool each interval until ctx is
// cancelled. A failed refresh is logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("state poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("state poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.refreshAll(ctx)
		}
	}
}

func (p *Poller) refreshAll(ctx context.Context) {
	for _, pool := range p.tracked() {
		state, err := p.reader.PoolState(ctx, pool)
		if err != nil {
			p.logger.Warn("pool refresh failed",
				zap.String("pool", pool.String()), zap.Error(err))
			continue
		}
		p.bus.Publish(events.NewPoolStateRefreshed(pool, state))
	}
}

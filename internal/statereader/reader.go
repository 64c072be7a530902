// Package statereader serves the read-only queries the display layer polls:
// pool state, user positions, market-wide stats and trade history. Nothing
// here signs or mutates; a Reader needs only a chain client and a retry
// policy.
package statereader

import (
	"context"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/launchpad"
	"github.com/rovshanmuradov/launchpad-core/internal/retry"
)

// MarketStats aggregates the state of every discoverable pool. A single
// pool's read failure excludes that pool from the aggregate instead of
// failing the whole query.
type MarketStats struct {
	Pools          []launchpad.PoolState
	PoolCount      int
	TotalSolLocked uint64
	TotalVolume    uint64
	FetchedAt      time.Time
}

// Reader answers read-only queries against the launchpad program.
type Reader struct {
	client   chain.Client
	programs launchpad.Programs
	policy   *retry.Policy
	logger   *zap.Logger
}

func New(client chain.Client, programs launchpad.Programs, policy *retry.Policy, logger *zap.Logger) *Reader {
	return &Reader{
		client:   client,
		programs: programs,
		policy:   policy,
		logger:   logger.Named("state-reader"),
	}
}

// PoolState fetches and decodes one pool account.
func (r *Reader) PoolState(ctx context.Context, pool solana.PublicKey) (*launchpad.PoolState, error) {
	data, err := retry.Do(ctx, r.policy, "read-pool-state", func(ctx context.Context) ([]byte, error) {
		return r.client.ReadAccount(ctx, pool)
	})
	if err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to read pool state", err)
	}
	return launchpad.DecodePoolState(pool, data)
}

// UserPosition fetches owner's position in pool. A missing position account
// returns (nil, nil): having no position is distinct from holding a
// zero-valued one.
func (r *Reader) UserPosition(ctx context.Context, owner, pool solana.PublicKey) (*launchpad.Position, error) {
	position, err := r.programs.DerivePosition(pool, owner)
	if err != nil {
		return nil, chain.Terminal(chain.CodeInvalidInput, "cannot derive position address", err)
	}
	data, err := retry.Do(ctx, r.policy, "read-position", func(ctx context.Context) ([]byte, error) {
		return r.client.ReadAccount(ctx, position)
	})
	if err != nil {
		if chain.CodeOf(err) == chain.CodeStateReadFailed {
			return nil, nil
		}
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to read position", err)
	}
	return launchpad.DecodePosition(position, data)
}

// MarketStats discovers every pool owned by the program and fetches each
// pool's state concurrently. Failing pools are dropped; the survivors keep
// their original relative order.
func (r *Reader) MarketStats(ctx context.Context) (*MarketStats, error) {
	accounts, err := retry.Do(ctx, r.policy, "discover-pools", func(ctx context.Context) ([]chain.ProgramAccount, error) {
		return r.client.ReadProgramAccounts(ctx, r.programs.Pool, []chain.Filter{
			{Offset: 0, Bytes: launchpad.PoolAccountDiscriminator},
		})
	})
	if err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to discover pools", err)
	}

	results := make([]*launchpad.PoolState, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	for i, acc := range accounts {
		g.Go(func() error {
			state, err := r.PoolState(gctx, acc.Address)
			if err != nil {
				// One slow or broken pool must not fail the aggregate.
				r.logger.Warn("excluding pool from market stats",
					zap.String("pool", acc.Address.String()),
					zap.Error(err))
				return nil
			}
			results[i] = state
			return nil
		})
	}
	_ = g.Wait()

	stats := &MarketStats{FetchedAt: time.Now()}
	for _, state := range results {
		if state == nil {
			continue
		}
		stats.Pools = append(stats.Pools, *state)
		stats.TotalSolLocked += state.SolReserve
		stats.TotalVolume += state.CumulativeVolume
	}
	stats.PoolCount = len(stats.Pools)
	return stats, nil
}

// TradeHistory returns pool's recorded trades at or after since, sorted
// ascending by time.
func (r *Reader) TradeHistory(ctx context.Context, pool solana.PublicKey, since time.Time) ([]launchpad.Trade, error) {
	accounts, err := retry.Do(ctx, r.policy, "read-trades", func(ctx context.Context) ([]chain.ProgramAccount, error) {
		return r.client.ReadProgramAccounts(ctx, r.programs.Pool, []chain.Filter{
			{Offset: 0, Bytes: launchpad.TradeAccountDiscriminator},
			{Offset: 8, Bytes: pool.Bytes()},
		})
	})
	if err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to read trade history", err)
	}

	trades := make([]launchpad.Trade, 0, len(accounts))
	for _, acc := range accounts {
		trade, err := launchpad.DecodeTrade(acc.Address, acc.Data)
		if err != nil {
			r.logger.Warn("skipping undecodable trade record",
				zap.String("address", acc.Address.String()),
				zap.Error(err))
			continue
		}
		if trade.Time.Before(since) {
			continue
		}
		trades = append(trades, *trade)
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].Time.Before(trades[j].Time)
	})
	return trades, nil
}

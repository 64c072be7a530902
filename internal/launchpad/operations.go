// Package launchpad implements the user-facing domain operations: token
// launch, pool creation, liquidity management, swaps and reward claims.
// Each operation is one atomic composition of precheck, instruction
// construction and orchestrated submission; nothing here holds state
// between calls.
package launchpad

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/events"
	"github.com/rovshanmuradov/launchpad-core/internal/precheck"
	"github.com/rovshanmuradov/launchpad-core/internal/retry"
	"github.com/rovshanmuradov/launchpad-core/internal/wallet"
)

// Submitter is the orchestrator capability the operations need.
type Submitter interface {
	Submit(ctx context.Context, signer wallet.Signer, instructions []solana.Instruction) (*chain.SubmissionReceipt, error)
}

// Config carries the program addresses and fixed costs of the operations.
type Config struct {
	Programs Programs

	// TokenLaunchCostLamports covers mint + metadata rent at launch.
	TokenLaunchCostLamports uint64
	// PoolInitCostLamports covers pool + vault rent at pool creation.
	PoolInitCostLamports uint64
	// FeeBufferLamports is kept aside for transaction fees when the
	// operation itself spends SOL.
	FeeBufferLamports uint64
	// DefaultFeeBps is the pool trade fee when the caller passes none.
	DefaultFeeBps uint16

	// ComputeUnits and PriorityFeeMicroLamports prepend compute-budget
	// instructions when non-zero.
	ComputeUnits             uint32
	PriorityFeeMicroLamports uint64
}

const (
	defaultTokenLaunchCost = 20_000_000
	defaultPoolInitCost    = 50_000_000
	defaultFeeBuffer       = 5_000_000
	defaultFeeBps          = 30
)

func (c Config) withDefaults() Config {
	if c.TokenLaunchCostLamports == 0 {
		c.TokenLaunchCostLamports = defaultTokenLaunchCost
	}
	if c.PoolInitCostLamports == 0 {
		c.PoolInitCostLamports = defaultPoolInitCost
	}
	if c.FeeBufferLamports == 0 {
		c.FeeBufferLamports = defaultFeeBuffer
	}
	if c.DefaultFeeBps == 0 {
		c.DefaultFeeBps = defaultFeeBps
	}
	return c
}

// Service composes the domain operations over one chain client, one
// orchestrator and one precheck validator.
type Service struct {
	client  chain.Client
	orch    Submitter
	checker *precheck.Validator
	policy  *retry.Policy
	bus     *events.Bus
	cfg     Config
	logger  *zap.Logger
}

// NewService builds the operations service. bus may be nil when no consumer
// subscribes.
func NewService(client chain.Client, orch Submitter, checker *precheck.Validator, bus *events.Bus, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		orch:    orch,
		checker: checker,
		policy:  retry.NewPolicy(retry.DefaultMaxAttempts, retry.DefaultBaseDelay, logger),
		bus:     bus,
		cfg:     cfg.withDefaults(),
		logger:  logger.Named("launchpad"),
	}
}

// CreateToken launches a new token: mints the full supply to the creator
// and attaches metadata, in one transaction.
func (s *Service) CreateToken(ctx context.Context, signer wallet.Signer, params CreateTokenParams) (*CreateTokenResult, error) {
	const op = "create_token"
	if err := s.checker.EnsureSignerConnected(signer); err != nil {
		return nil, err
	}

	if params.Name == "" || params.Symbol == "" {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "token name and symbol are required", nil))
	}
	if params.Supply == 0 {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "supply must be positive", nil))
	}
	decimals := params.Decimals
	if decimals < 0 {
		decimals = DefaultDecimals
	}
	if decimals > 9 {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "decimals must be in [0, 9]", nil))
	}
	supplyBaseUnits, err := BaseUnitsU64(params.Supply, uint8(decimals))
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.started(op, signer)

	if err := s.checker.EnsureSufficientBalance(ctx, signer, []precheck.Requirement{
		{Asset: chain.NativeAsset(), Min: s.cfg.TokenLaunchCostLamports},
	}); err != nil {
		return nil, s.failed(op, signer, err)
	}

	creator := signer.Address()
	mint, err := s.cfg.Programs.DeriveMint(creator, params.Symbol)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive mint address", err))
	}
	metadata, err := s.cfg.Programs.DeriveMetadata(mint)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive metadata address", err))
	}
	creatorATA, _, err := solana.FindAssociatedTokenAddress(creator, mint)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive token account", err))
	}

	instructions := append(s.priorityInstructions(),
		buildLaunchTokenInstruction(
			s.cfg.Programs, creator, mint, metadata, creatorATA,
			params.Name, params.Symbol, params.URI,
			supplyBaseUnits, uint8(decimals)))

	receipt, err := s.orch.Submit(ctx, signer, instructions)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.completed(op, signer, *receipt)
	s.logger.Info("token launched",
		zap.String("mint", mint.String()),
		zap.String("symbol", params.Symbol),
		zap.Uint64("supply_base_units", supplyBaseUnits))

	return &CreateTokenResult{Mint: mint, SupplyBaseUnits: supplyBaseUnits, Receipt: *receipt}, nil
}

// CreatePool initializes the liquidity pool for an existing mint.
func (s *Service) CreatePool(ctx context.Context, signer wallet.Signer, params CreatePoolParams) (*CreatePoolResult, error) {
	const op = "create_pool"
	if err := s.checker.EnsureSignerConnected(signer); err != nil {
		return nil, err
	}
	if params.Mint.IsZero() {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "mint is required", nil))
	}
	if params.InitialPriceLamports == 0 {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "initial price must be positive", nil))
	}
	feeBps := params.FeeBps
	if feeBps == 0 {
		feeBps = s.cfg.DefaultFeeBps
	}
	s.started(op, signer)

	if err := s.checker.EnsureSufficientBalance(ctx, signer, []precheck.Requirement{
		{Asset: chain.NativeAsset(), Min: s.cfg.PoolInitCostLamports},
	}); err != nil {
		return nil, s.failed(op, signer, err)
	}

	accounts, err := s.derivePoolAccounts(params.Mint)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}

	instructions := append(s.priorityInstructions(),
		buildCreatePoolInstruction(
			s.cfg.Programs, signer.Address(), params.Mint,
			accounts.pool, accounts.tokenVault, accounts.solVault,
			params.InitialPriceLamports, feeBps))

	receipt, err := s.orch.Submit(ctx, signer, instructions)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.completed(op, signer, *receipt)
	s.logger.Info("pool created",
		zap.String("pool", accounts.pool.String()),
		zap.String("mint", params.Mint.String()))

	return &CreatePoolResult{Pool: accounts.pool, Receipt: *receipt}, nil
}

// AddLiquidity deposits token and SOL into a pool and credits the caller's
// position.
func (s *Service) AddLiquidity(ctx context.Context, signer wallet.Signer, params AddLiquidityParams) (*LiquidityResult, error) {
	const op = "add_liquidity"
	if err := s.checker.EnsureSignerConnected(signer); err != nil {
		return nil, err
	}
	if params.TokenAmount == 0 || params.Lamports == 0 {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "token and SOL amounts must be positive", nil))
	}
	s.started(op, signer)

	pool, err := s.readPool(ctx, params.Pool)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}

	if err := s.checker.EnsureSufficientBalance(ctx, signer, []precheck.Requirement{
		{Asset: chain.TokenAsset(pool.Mint), Min: params.TokenAmount},
		{Asset: chain.NativeAsset(), Min: params.Lamports + s.cfg.FeeBufferLamports},
	}); err != nil {
		return nil, s.failed(op, signer, err)
	}

	owner := signer.Address()
	accounts, err := s.derivePoolAccounts(pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	position, err := s.cfg.Programs.DerivePosition(params.Pool, owner)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive position address", err))
	}
	ownerATA, _, err := solana.FindAssociatedTokenAddress(owner, pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive token account", err))
	}

	instructions := append(s.priorityInstructions(),
		createATAIdempotentInstruction(owner, owner, pool.Mint),
		buildAddLiquidityInstruction(
			s.cfg.Programs, owner, params.Pool, pool.Mint, position,
			ownerATA, accounts.tokenVault, accounts.solVault,
			params.TokenAmount, params.Lamports))

	receipt, err := s.orch.Submit(ctx, signer, instructions)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.completed(op, signer, *receipt)
	return &LiquidityResult{Pool: params.Pool, Position: position, Receipt: *receipt}, nil
}

// RemoveLiquidity burns LP shares from the caller's position and withdraws
// the backing assets.
func (s *Service) RemoveLiquidity(ctx context.Context, signer wallet.Signer, params RemoveLiquidityParams) (*LiquidityResult, error) {
	const op = "remove_liquidity"
	if err := s.checker.EnsureSignerConnected(signer); err != nil {
		return nil, err
	}
	if params.LPAmount == 0 {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "LP amount must be positive", nil))
	}
	s.started(op, signer)

	pool, err := s.readPool(ctx, params.Pool)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}

	owner := signer.Address()
	position, err := s.cfg.Programs.DerivePosition(params.Pool, owner)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive position address", err))
	}

	// LP shares live in the position account, not in a token balance.
	posState, err := s.readPosition(ctx, position)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	have := uint64(0)
	if posState != nil {
		have = posState.LPShares
	}
	if have < params.LPAmount {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInsufficientBalance,
			fmt.Sprintf("insufficient LP shares: have %d, need %d", have, params.LPAmount), nil))
	}

	accounts, err := s.derivePoolAccounts(pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	ownerATA, _, err := solana.FindAssociatedTokenAddress(owner, pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive token account", err))
	}

	instructions := append(s.priorityInstructions(),
		buildRemoveLiquidityInstruction(
			s.cfg.Programs, owner, params.Pool, pool.Mint, position,
			ownerATA, accounts.tokenVault, accounts.solVault,
			params.LPAmount))

	receipt, err := s.orch.Submit(ctx, signer, instructions)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.completed(op, signer, *receipt)
	return &LiquidityResult{Pool: params.Pool, Position: position, Receipt: *receipt}, nil
}

// Swap trades one side of a pool for the other.
func (s *Service) Swap(ctx context.Context, signer wallet.Signer, params SwapParams) (*SwapResult, error) {
	const op = "swap"
	if err := s.checker.EnsureSignerConnected(signer); err != nil {
		return nil, err
	}
	if params.AmountIn == 0 {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "input amount must be positive", nil))
	}
	s.started(op, signer)

	pool, err := s.readPool(ctx, params.Pool)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}

	inputAsset := chain.TokenAsset(pool.Mint)
	if params.SolToToken {
		inputAsset = chain.NativeAsset()
	}
	if err := s.checker.EnsureSufficientBalance(ctx, signer, []precheck.Requirement{
		{Asset: inputAsset, Min: params.AmountIn},
	}); err != nil {
		return nil, s.failed(op, signer, err)
	}

	trader := signer.Address()
	accounts, err := s.derivePoolAccounts(pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	traderATA, _, err := solana.FindAssociatedTokenAddress(trader, pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive token account", err))
	}

	instructions := append(s.priorityInstructions(),
		createATAIdempotentInstruction(trader, trader, pool.Mint),
		buildSwapInstruction(
			s.cfg.Programs, trader, params.Pool, pool.Mint, traderATA,
			accounts.tokenVault, accounts.solVault,
			params.SolToToken, params.AmountIn, params.MinAmountOut))

	receipt, err := s.orch.Submit(ctx, signer, instructions)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.completed(op, signer, *receipt)
	return &SwapResult{Pool: params.Pool, Receipt: *receipt}, nil
}

// ClaimRewards collects accrued rewards from the caller's position. No
// balance requirement beyond signer connectivity.
func (s *Service) ClaimRewards(ctx context.Context, signer wallet.Signer, params ClaimRewardsParams) (*ClaimRewardsResult, error) {
	const op = "claim_rewards"
	if err := s.checker.EnsureSignerConnected(signer); err != nil {
		return nil, err
	}
	s.started(op, signer)

	pool, err := s.readPool(ctx, params.Pool)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}

	owner := signer.Address()
	position, err := s.cfg.Programs.DerivePosition(params.Pool, owner)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive position address", err))
	}
	accounts, err := s.derivePoolAccounts(pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	ownerATA, _, err := solana.FindAssociatedTokenAddress(owner, pool.Mint)
	if err != nil {
		return nil, s.failed(op, signer, chain.Terminal(chain.CodeInvalidInput, "cannot derive token account", err))
	}

	instructions := append(s.priorityInstructions(),
		createATAIdempotentInstruction(owner, owner, pool.Mint),
		buildClaimRewardsInstruction(
			s.cfg.Programs, owner, params.Pool, position, ownerATA, accounts.tokenVault))

	receipt, err := s.orch.Submit(ctx, signer, instructions)
	if err != nil {
		return nil, s.failed(op, signer, err)
	}
	s.completed(op, signer, *receipt)
	return &ClaimRewardsResult{Pool: params.Pool, Position: position, Receipt: *receipt}, nil
}

type poolAccounts struct {
	pool       solana.PublicKey
	tokenVault solana.PublicKey
	solVault   solana.PublicKey
}

func (s *Service) derivePoolAccounts(mint solana.PublicKey) (poolAccounts, error) {
	pool, err := s.cfg.Programs.DerivePool(mint)
	if err != nil {
		return poolAccounts{}, chain.Terminal(chain.CodeInvalidInput, "cannot derive pool address", err)
	}
	tokenVault, err := s.cfg.Programs.DeriveVault(pool, mint)
	if err != nil {
		return poolAccounts{}, chain.Terminal(chain.CodeInvalidInput, "cannot derive token vault", err)
	}
	solVault, err := s.cfg.Programs.DeriveVault(pool, solana.SolMint)
	if err != nil {
		return poolAccounts{}, chain.Terminal(chain.CodeInvalidInput, "cannot derive sol vault", err)
	}
	return poolAccounts{pool: pool, tokenVault: tokenVault, solVault: solVault}, nil
}

func (s *Service) readPool(ctx context.Context, pool solana.PublicKey) (*PoolState, error) {
	data, err := retry.Do(ctx, s.policy, "read-pool", func(ctx context.Context) ([]byte, error) {
		return s.client.ReadAccount(ctx, pool)
	})
	if err != nil {
		return nil, chain.Terminal(chain.CodeStateReadFailed, "failed to read pool account", err)
	}
	return DecodePoolState(pool, data)
}

// readPosition returns nil when the position account does not exist.
func (s *Service) readPosition(ctx context.Context, position solana.PublicKey) (*Position, error) {
	data, err := s.client.ReadAccount(ctx, position)
	if err != nil {
		if chain.CodeOf(err) == chain.CodeStateReadFailed {
			return nil, nil
		}
		return nil, err
	}
	return DecodePosition(position, data)
}

func (s *Service) priorityInstructions() []solana.Instruction {
	var instructions []solana.Instruction
	if s.cfg.ComputeUnits > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstruction(s.cfg.ComputeUnits).Build())
	}
	if s.cfg.PriorityFeeMicroLamports > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(s.cfg.PriorityFeeMicroLamports).Build())
	}
	return instructions
}

func (s *Service) started(op string, signer wallet.Signer) {
	if s.bus != nil {
		_ = s.bus.Publish(events.NewOperationStarted(op, signer.Address()))
	}
}

func (s *Service) completed(op string, signer wallet.Signer, receipt chain.SubmissionReceipt) {
	if s.bus != nil {
		_ = s.bus.Publish(events.NewOperationCompleted(op, signer.Address(), receipt))
	}
}

func (s *Service) failed(op string, signer wallet.Signer, err error) error {
	if s.bus != nil {
		_ = s.bus.Publish(events.NewOperationFailed(op, signer.Address(), err))
	}
	return err
}

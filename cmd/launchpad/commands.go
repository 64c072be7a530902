package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/launchpad"
	"github.com/rovshanmuradov/launchpad-core/internal/logger"
	"github.com/rovshanmuradov/launchpad-core/internal/wallet"
)

// runCommand executes a single operation from the command line and exits.
// The first wallet in the wallets file signs.
func runCommand(ctx context.Context, service *launchpad.Service, wallets map[string]*wallet.Wallet, args []string, log *logger.Logger) error {
	var signer *wallet.Wallet
	for _, w := range wallets {
		signer = w
		break
	}
	if signer == nil {
		return fmt.Errorf("no wallet available to sign")
	}

	switch args[0] {
	case "launch":
		if len(args) != 5 {
			return fmt.Errorf("usage: launch <name> <symbol> <uri> <supply>")
		}
		supply, err := strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid supply: %w", err)
		}
		res, err := service.CreateToken(ctx, signer, launchpad.CreateTokenParams{
			Name:     args[1],
			Symbol:   args[2],
			URI:      args[3],
			Supply:   supply,
			Decimals: -1,
		})
		if err != nil {
			return err
		}
		log.Info("Token launched",
			zap.String("mint", res.Mint.String()),
			zap.String("signature", res.Receipt.Signature.String()))
		return nil

	case "create-pool":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("usage: create-pool <mint> <price_lamports> [fee_bps]")
		}
		mint, err := solana.PublicKeyFromBase58(args[1])
		if err != nil {
			return fmt.Errorf("invalid mint: %w", err)
		}
		price, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		var feeBps uint64
		if len(args) == 4 {
			feeBps, err = strconv.ParseUint(args[3], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid fee_bps: %w", err)
			}
		}
		res, err := service.CreatePool(ctx, signer, launchpad.CreatePoolParams{
			Mint:                 mint,
			InitialPriceLamports: price,
			FeeBps:               uint16(feeBps),
		})
		if err != nil {
			return err
		}
		log.Info("Pool created",
			zap.String("pool", res.Pool.String()),
			zap.String("signature", res.Receipt.Signature.String()))
		return nil

	case "add-liquidity":
		if len(args) != 4 {
			return fmt.Errorf("usage: add-liquidity <pool> <token_amount> <lamports>")
		}
		pool, tokens, lamports, err := parsePoolAndAmounts(args[1], args[2], args[3])
		if err != nil {
			return err
		}
		res, err := service.AddLiquidity(ctx, signer, launchpad.AddLiquidityParams{
			Pool:        pool,
			TokenAmount: tokens,
			Lamports:    lamports,
		})
		if err != nil {
			return err
		}
		log.Info("Liquidity added",
			zap.String("signature", res.Receipt.Signature.String()))
		return nil

	case "remove-liquidity":
		if len(args) != 3 {
			return fmt.Errorf("usage: remove-liquidity <pool> <lp_amount>")
		}
		pool, err := solana.PublicKeyFromBase58(args[1])
		if err != nil {
			return fmt.Errorf("invalid pool: %w", err)
		}
		lp, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid lp_amount: %w", err)
		}
		res, err := service.RemoveLiquidity(ctx, signer, launchpad.RemoveLiquidityParams{
			Pool:     pool,
			LPAmount: lp,
		})
		if err != nil {
			return err
		}
		log.Info("Liquidity removed",
			zap.String("signature", res.Receipt.Signature.String()))
		return nil

	case "swap":
		if len(args) != 5 {
			return fmt.Errorf("usage: swap <pool> <buy|sell> <amount_in> <min_out>")
		}
		pool, amountIn, minOut, err := parsePoolAndAmounts(args[1], args[3], args[4])
		if err != nil {
			return err
		}
		var solToToken bool
		switch args[2] {
		case "buy":
			solToToken = true
		case "sell":
			solToToken = false
		default:
			return fmt.Errorf("direction must be buy or sell")
		}
		res, err := service.Swap(ctx, signer, launchpad.SwapParams{
			Pool:         pool,
			SolToToken:   solToToken,
			AmountIn:     amountIn,
			MinAmountOut: minOut,
		})
		if err != nil {
			return err
		}
		log.Info("Swap executed",
			zap.String("signature", res.Receipt.Signature.String()))
		return nil

	case "claim":
		if len(args) != 2 {
			return fmt.Errorf("usage: claim <pool>")
		}
		pool, err := solana.PublicKeyFromBase58(args[1])
		if err != nil {
			return fmt.Errorf("invalid pool: %w", err)
		}
		res, err := service.ClaimRewards(ctx, signer, launchpad.ClaimRewardsParams{Pool: pool})
		if err != nil {
			return err
		}
		log.Info("Rewards claimed",
			zap.String("signature", res.Receipt.Signature.String()))
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parsePoolAndAmounts(poolArg, aArg, bArg string) (solana.PublicKey, uint64, uint64, error) {
	pool, err := solana.PublicKeyFromBase58(poolArg)
	if err != nil {
		return solana.PublicKey{}, 0, 0, fmt.Errorf("invalid pool: %w", err)
	}
	a, err := strconv.ParseUint(aArg, 10, 64)
	if err != nil {
		return solana.PublicKey{}, 0, 0, fmt.Errorf("invalid amount: %w", err)
	}
	b, err := strconv.ParseUint(bArg, 10, 64)
	if err != nil {
		return solana.PublicKey{}, 0, 0, fmt.Errorf("invalid amount: %w", err)
	}
	return pool, a, b, nil
}

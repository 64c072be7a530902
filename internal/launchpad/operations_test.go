package launchpad

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/precheck"
)

func newTestService(client chain.Client, orch Submitter) *Service {
	logger := zap.NewNop()
	return NewService(client, orch, precheck.NewValidator(client, logger), nil, Config{
		Programs: testPrograms(),
	}, logger)
}

func encodedPool(t *testing.T, addr, mint solana.PublicKey) []byte {
	t.Helper()
	data, err := EncodePoolAccount(&PoolState{
		Address:      addr,
		Mint:         mint,
		Creator:      solana.NewWallet().PublicKey(),
		TokenReserve: 1_000_000,
		SolReserve:   500_000,
		LPSupply:     700,
		FeeBps:       30,
		CreatedAt:    time.Unix(1_700_000_000, 0),
	})
	require.NoError(t, err)
	return data
}

func TestCreateTokenValidationBeforeNetwork(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	cases := []CreateTokenParams{
		{Name: "", Symbol: "TKN", Supply: 1},
		{Name: "Token", Symbol: "", Supply: 1},
		{Name: "Token", Symbol: "TKN", Supply: 0},
		{Name: "Token", Symbol: "TKN", Supply: 1, Decimals: 10},
		{Name: "Token", Symbol: "TKN", Supply: 1_000_000_000_000, Decimals: 9},
	}
	for _, params := range cases {
		_, err := svc.CreateToken(context.Background(), w, params)
		require.Error(t, err)
		assert.Equal(t, chain.CodeInvalidInput, chain.CodeOf(err))
	}
	// Invalid input never reaches the network.
	client.AssertNumberOfCalls(t, "GetBalance", 0)
	orch.AssertNumberOfCalls(t, "Submit", 0)
}

func TestCreateTokenRequiresConnectedWallet(t *testing.T) {
	svc := newTestService(new(MockClient), new(MockSubmitter))
	_, err := svc.CreateToken(context.Background(), nil, CreateTokenParams{
		Name: "Token", Symbol: "TKN", Supply: 1,
	})
	require.Error(t, err)
	assert.Equal(t, chain.CodeWalletNotConnected, chain.CodeOf(err))
}

func TestCreateTokenConfirmed(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	client.On("GetBalance", mock.Anything, w.Address(), chain.NativeAsset()).Return(
		chain.BalanceSnapshot{Amount: 100_000_000}, nil)
	orch.On("Submit", mock.Anything, w, mock.Anything).Return(confirmedReceipt(), nil)

	res, err := svc.CreateToken(context.Background(), w, CreateTokenParams{
		Name:     "My Token",
		Symbol:   "MTK",
		URI:      "https://example.com/mtk.json",
		Supply:   1_000_000,
		Decimals: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, chain.StatusConfirmed, res.Receipt.Status)
	assert.Equal(t, uint64(1_000_000*1_000_000_000), res.SupplyBaseUnits)

	wantMint, err := testPrograms().DeriveMint(w.Address(), "MTK")
	require.NoError(t, err)
	assert.Equal(t, wantMint, res.Mint)
	orch.AssertNumberOfCalls(t, "Submit", 1)
}

func TestCreateTokenInsufficientBalance(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	client.On("GetBalance", mock.Anything, w.Address(), chain.NativeAsset()).Return(
		chain.BalanceSnapshot{Amount: 1}, nil)

	_, err := svc.CreateToken(context.Background(), w, CreateTokenParams{
		Name: "Token", Symbol: "TKN", Supply: 1,
	})
	require.Error(t, err)
	assert.Equal(t, chain.CodeInsufficientBalance, chain.CodeOf(err))
	orch.AssertNumberOfCalls(t, "Submit", 0)
}

func TestCreatePoolZeroPriceFailsWithoutNetwork(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)

	_, err := svc.CreatePool(context.Background(), testWallet(t), CreatePoolParams{
		Mint:                 solana.NewWallet().PublicKey(),
		InitialPriceLamports: 0,
	})
	require.Error(t, err)
	assert.Equal(t, chain.CodeInvalidInput, chain.CodeOf(err))
	client.AssertNumberOfCalls(t, "GetBalance", 0)
	client.AssertNumberOfCalls(t, "ReadAccount", 0)
	orch.AssertNumberOfCalls(t, "Submit", 0)
}

func TestAddLiquidityConfirmed(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	client.On("ReadAccount", mock.Anything, pool).Return(encodedPool(t, pool, mint), nil)
	client.On("GetBalance", mock.Anything, w.Address(), chain.TokenAsset(mint)).Return(
		chain.BalanceSnapshot{Amount: 10_000}, nil)
	client.On("GetBalance", mock.Anything, w.Address(), chain.NativeAsset()).Return(
		chain.BalanceSnapshot{Amount: 1_000_000_000}, nil)
	orch.On("Submit", mock.Anything, w, mock.Anything).Return(confirmedReceipt(), nil)

	res, err := svc.AddLiquidity(context.Background(), w, AddLiquidityParams{
		Pool:        pool,
		TokenAmount: 10_000,
		Lamports:    500_000,
	})
	require.NoError(t, err)
	assert.Equal(t, pool, res.Pool)
	assert.Equal(t, chain.StatusConfirmed, res.Receipt.Status)

	wantPosition, err := testPrograms().DerivePosition(pool, w.Address())
	require.NoError(t, err)
	assert.Equal(t, wantPosition, res.Position)
	client.AssertExpectations(t)
	orch.AssertExpectations(t)
}

func TestAddLiquidityTokenShortfall(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	client.On("ReadAccount", mock.Anything, pool).Return(encodedPool(t, pool, mint), nil)
	client.On("GetBalance", mock.Anything, w.Address(), chain.TokenAsset(mint)).Return(
		chain.BalanceSnapshot{Amount: 1}, nil)

	_, err := svc.AddLiquidity(context.Background(), w, AddLiquidityParams{
		Pool:        pool,
		TokenAmount: 10_000,
		Lamports:    500_000,
	})
	require.Error(t, err)
	assert.Equal(t, chain.CodeInsufficientBalance, chain.CodeOf(err))
	orch.AssertNumberOfCalls(t, "Submit", 0)
}

func TestRemoveLiquidityNoPosition(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	position, err := testPrograms().DerivePosition(pool, w.Address())
	require.NoError(t, err)

	client.On("ReadAccount", mock.Anything, pool).Return(encodedPool(t, pool, mint), nil)
	client.On("ReadAccount", mock.Anything, position).Return(
		nil, chain.Terminal(chain.CodeStateReadFailed, "account not found", nil))

	_, err = svc.RemoveLiquidity(context.Background(), w, RemoveLiquidityParams{
		Pool:     pool,
		LPAmount: 100,
	})
	require.Error(t, err)
	assert.Equal(t, chain.CodeInsufficientBalance, chain.CodeOf(err))
	orch.AssertNumberOfCalls(t, "Submit", 0)
}

func TestRemoveLiquidityConfirmed(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	position, err := testPrograms().DerivePosition(pool, w.Address())
	require.NoError(t, err)

	posData, err := EncodePositionAccount(&Position{
		Address:   position,
		Pool:      pool,
		Owner:     w.Address(),
		LPShares:  500,
		UpdatedAt: time.Unix(1_700_000_000, 0),
	})
	require.NoError(t, err)

	client.On("ReadAccount", mock.Anything, pool).Return(encodedPool(t, pool, mint), nil)
	client.On("ReadAccount", mock.Anything, position).Return(posData, nil)
	orch.On("Submit", mock.Anything, w, mock.Anything).Return(confirmedReceipt(), nil)

	res, err := svc.RemoveLiquidity(context.Background(), w, RemoveLiquidityParams{
		Pool:     pool,
		LPAmount: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, position, res.Position)
	orch.AssertNumberOfCalls(t, "Submit", 1)
}

func TestSwapChecksInputAsset(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	cases := []struct {
		name       string
		solToToken bool
		asset      chain.Asset
	}{
		{"buy checks SOL", true, chain.NativeAsset()},
		{"sell checks token", false, chain.TokenAsset(mint)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(MockClient)
			orch := new(MockSubmitter)
			svc := newTestService(client, orch)
			w := testWallet(t)

			client.On("ReadAccount", mock.Anything, pool).Return(encodedPool(t, pool, mint), nil)
			client.On("GetBalance", mock.Anything, w.Address(), tc.asset).Return(
				chain.BalanceSnapshot{Amount: 1_000_000}, nil).Once()
			orch.On("Submit", mock.Anything, w, mock.Anything).Return(confirmedReceipt(), nil)

			_, err := svc.Swap(context.Background(), w, SwapParams{
				Pool:         pool,
				SolToToken:   tc.solToToken,
				AmountIn:     1_000,
				MinAmountOut: 900,
			})
			require.NoError(t, err)
			client.AssertExpectations(t)
		})
	}
}

func TestClaimRewardsConfirmed(t *testing.T) {
	client := new(MockClient)
	orch := new(MockSubmitter)
	svc := newTestService(client, orch)
	w := testWallet(t)

	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	client.On("ReadAccount", mock.Anything, pool).Return(encodedPool(t, pool, mint), nil)
	orch.On("Submit", mock.Anything, w, mock.Anything).Return(confirmedReceipt(), nil)

	res, err := svc.ClaimRewards(context.Background(), w, ClaimRewardsParams{Pool: pool})
	require.NoError(t, err)
	assert.Equal(t, pool, res.Pool)
	orch.AssertNumberOfCalls(t, "Submit", 1)
}

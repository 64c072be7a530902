package launchpad

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/wallet"
)

// MockClient implements chain.Client for operation tests.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetBalance(ctx context.Context, addr solana.PublicKey, asset chain.Asset) (chain.BalanceSnapshot, error) {
	args := m.Called(ctx, addr, asset)
	return args.Get(0).(chain.BalanceSnapshot), args.Error(1)
}

func (m *MockClient) LatestBlockRef(ctx context.Context) (chain.BlockRef, error) {
	args := m.Called(ctx)
	return args.Get(0).(chain.BlockRef), args.Error(1)
}

func (m *MockClient) SubmitRaw(ctx context.Context, signed []byte) (chain.SubmissionReceipt, error) {
	args := m.Called(ctx, signed)
	return args.Get(0).(chain.SubmissionReceipt), args.Error(1)
}

func (m *MockClient) Confirm(ctx context.Context, sig solana.Signature, ref chain.BlockRef) (chain.SubmissionReceipt, error) {
	args := m.Called(ctx, sig, ref)
	return args.Get(0).(chain.SubmissionReceipt), args.Error(1)
}

func (m *MockClient) ReadAccount(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockClient) ReadProgramAccounts(ctx context.Context, program solana.PublicKey, filters []chain.Filter) ([]chain.ProgramAccount, error) {
	args := m.Called(ctx, program, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chain.ProgramAccount), args.Error(1)
}

var _ chain.Client = (*MockClient)(nil)

// MockSubmitter implements Submitter.
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, signer wallet.Signer, instructions []solana.Instruction) (*chain.SubmissionReceipt, error) {
	args := m.Called(ctx, signer, instructions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chain.SubmissionReceipt), args.Error(1)
}

var _ Submitter = (*MockSubmitter)(nil)

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

func testPrograms() Programs {
	return Programs{
		Pool:          solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"),
		TokenMetadata: solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"),
		FeeRecipient:  solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM"),
	}
}

func confirmedReceipt() *chain.SubmissionReceipt {
	return &chain.SubmissionReceipt{
		Signature: solana.Signature{7},
		Status:    chain.StatusConfirmed,
		Slot:      100,
	}
}

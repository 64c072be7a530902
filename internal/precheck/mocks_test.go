package precheck

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
)

// MockClient implements chain.Client for precheck tests.
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

package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromBase58(t *testing.T) {
	kp := solana.NewWallet()
	w, err := New(kp.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), w.Address())
	assert.True(t, w.Connected())
}

func TestNewRejectsBadKeys(t *testing.T) {
	_, err := New("not-base58!!!")
	assert.Error(t, err)

	// Valid base58 but wrong length.
	_, err = New("3yZe7d")
	assert.Error(t, err)
}

func TestSignTransaction(t *testing.T) {
	kp := solana.NewWallet()
	w, err := New(kp.PrivateKey.String())
	require.NoError(t, err)

	program := solana.NewWallet().PublicKey()
	ins := solana.NewInstruction(program, solana.AccountMetaSlice{
		solana.Meta(w.Address()).WRITE().SIGNER(),
	}, []byte{1})

	tx, err := solana.NewTransaction([]solana.Instruction{ins},
		solana.Hash{1}, solana.TransactionPayer(w.Address()))
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
}

func TestSignAllTransactions(t *testing.T) {
	kp := solana.NewWallet()
	w, err := New(kp.PrivateKey.String())
	require.NoError(t, err)

	var txs []*solana.Transaction
	for i := 0; i < 3; i++ {
		ins := solana.NewInstruction(solana.NewWallet().PublicKey(), solana.AccountMetaSlice{
			solana.Meta(w.Address()).WRITE().SIGNER(),
		}, []byte{byte(i)})
		tx, err := solana.NewTransaction([]solana.Instruction{ins},
			solana.Hash{1}, solana.TransactionPayer(w.Address()))
		require.NoError(t, err)
		txs = append(txs, tx)
	}

	require.NoError(t, w.SignAllTransactions(txs))
	for _, tx := range txs {
		assert.NoError(t, tx.VerifySignatures())
	}
}

func TestATAIsCached(t *testing.T) {
	w, err := New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	mint := solana.NewWallet().PublicKey()

	first, err := w.ATA(mint)
	require.NoError(t, err)
	second, err := w.ATA(mint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	want, _, err := solana.FindAssociatedTokenAddress(w.Address(), mint)
	require.NoError(t, err)
	assert.Equal(t, want, first)
}

func TestLoadWallets(t *testing.T) {
	kp1 := solana.NewWallet()
	kp2 := solana.NewWallet()

	path := filepath.Join(t.TempDir(), "wallets.csv")
	content := "Name,PrivateKey\n" +
		"main," + kp1.PrivateKey.String() + "\n" +
		"backup," + kp2.PrivateKey.String() + "\n" +
		"broken,not-a-key\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, kp1.PublicKey(), wallets["main"].Address())
	assert.Equal(t, kp2.PublicKey(), wallets["backup"].Address())
}

func TestLoadWalletsMissingFile(t *testing.T) {
	_, err := LoadWallets(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

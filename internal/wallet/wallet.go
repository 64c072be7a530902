// Package wallet supplies the signing capability domain operations consume.
// The core never owns key material: a Signer is handed in from outside and
// only its capability surface is used.
package wallet

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Signer is an identity capable of authorizing transactions.
type Signer interface {
	// Address returns the public key that pays for and signs transactions.
	Address() solana.PublicKey
	// Connected reports whether the signer can currently sign.
	Connected() bool
	// SignTransaction signs tx in place with the signer's key.
	SignTransaction(tx *solana.Transaction) error
	// SignAllTransactions signs every transaction in txs in place.
	SignAllTransactions(txs []*solana.Transaction) error
}

// Wallet is a local keypair-backed Signer.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey

	mu       sync.Mutex
	ataCache map[string]solana.PublicKey
}

// New builds a wallet from a base58-encoded 64-byte private key.
func New(privateKeyBase58 string) (*Wallet, error) {
	raw, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(raw))
	}
	privateKey := solana.PrivateKey(raw)
	return &Wallet{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		ataCache:   make(map[string]solana.PublicKey),
	}, nil
}

func (w *Wallet) Address() solana.PublicKey { return w.publicKey }

func (w *Wallet) Connected() bool { return len(w.privateKey) == 64 }

func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	})
	return err
}

func (w *Wallet) SignAllTransactions(txs []*solana.Transaction) error {
	for i, tx := range txs {
		if err := w.SignTransaction(tx); err != nil {
			return fmt.Errorf("failed to sign transaction %d: %w", i, err)
		}
	}
	return nil
}

// ATA returns the associated token account address for mint, computed once
// and cached.
func (w *Wallet) ATA(mint solana.PublicKey) (solana.PublicKey, error) {
	key := mint.String()
	w.mu.Lock()
	defer w.mu.Unlock()
	if ata, ok := w.ataCache[key]; ok {
		return ata, nil
	}
	ata, _, err := solana.FindAssociatedTokenAddress(w.publicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	w.ataCache[key] = ata
	return ata, nil
}

// String returns the wallet's public key.
func (w *Wallet) String() string { return w.publicKey.String() }

// LoadWallets reads wallets from a CSV file with columns [Name, PrivateKeyBase58].
// Malformed rows are skipped.
func LoadWallets(path string) (map[string]*Wallet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty or missing data")
	}

	wallets := make(map[string]*Wallet)
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		w, err := New(record[1])
		if err != nil {
			continue
		}
		wallets[record[0]] = w
	}
	return wallets, nil
}

var _ Signer = (*Wallet)(nil)

package wallet_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/nftlend/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, err := mgr.AddWatchOnly("lender", strings.ToLower(testSignerAddr))
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Address, "address should be checksummed")

	got, err := mgr.Get("lender")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeWatchOnly, got.Type)
	assert.Empty(t, got.KeyRef)
	assert.NotEmpty(t, got.CreatedAt)
}

func TestAddWatchOnlyRejectsBadAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWatchOnly("bad", "0x123")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	_, err := mgr.AddWatchOnly("dup", testSignerAddr)
	require.NoError(t, err)

	_, err = mgr.AddWatchOnly("dup", testSignerAddr)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
	_, err = mgr.AddWithKey("dup", testPrivKeyHex)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))

	w, err := mgr.AddWithKey("borrower", testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.Equal(t, "nftlend.borrower", w.KeyRef)

	stored, err := ks.Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(testPrivKeyHex, "0x"), stored)
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("bad", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)

	_, err = mgr.Get("bad")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound, "failed import must not register a wallet")
}

func TestGenerateWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, hexKey, err := mgr.Generate("fresh")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Len(t, w.Address, 42)
	assert.True(t, strings.HasPrefix(hexKey, "0x"))
	assert.Len(t, hexKey, 66)

	_, key2, err := mgr.Generate("fresh2")
	require.NoError(t, err)
	assert.NotEqual(t, hexKey, key2)
}

func TestListSortedByName(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	for _, n := range []string{"carol", "alice", "bob"} {
		_, err := mgr.AddWatchOnly(n, testSignerAddr)
		require.NoError(t, err)
	}

	wallets, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, wallets, 3)
	assert.Equal(t, "alice", wallets[0].Name)
	assert.Equal(t, "bob", wallets[1].Name)
	assert.Equal(t, "carol", wallets[2].Name)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	w, err := mgr.AddWithKey("gone", testPrivKeyHex)
	require.NoError(t, err)

	require.NoError(t, mgr.Remove("gone"))

	_, err = mgr.Get("gone")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = ks.Retrieve(w.KeyRef)
	assert.ErrorIs(t, err, wallet.ErrKeyNotFound)
}

func TestRemoveNonExistentWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.ErrorIs(t, mgr.Remove("ghost"), wallet.ErrWalletNotFound)
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func TestSetDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.AddWatchOnly("w1", testSignerAddr) //nolint:errcheck
	mgr.AddWatchOnly("w2", testSignerAddr) //nolint:errcheck

	_, err := mgr.Default()
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound, "two unmarked wallets have no default")

	require.NoError(t, mgr.SetDefault("w2"))
	def, err := mgr.Default()
	require.NoError(t, err)
	assert.Equal(t, "w2", def.Name)

	require.NoError(t, mgr.SetDefault("w1"))
	w2, _ := mgr.Get("w2")
	assert.False(t, w2.IsDefault)
}

func TestDefaultWalletWithSingleWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.AddWatchOnly("only", testSignerAddr) //nolint:errcheck

	def, err := mgr.Default()
	require.NoError(t, err)
	assert.Equal(t, "only", def.Name)
}

func TestSetDefaultUnknown(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.ErrorIs(t, mgr.SetDefault("ghost"), wallet.ErrWalletNotFound)
}

// ---------------------------------------------------------------------------
// Signer lookup
// ---------------------------------------------------------------------------

func TestManagerSignerUsesDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("main", testPrivKeyHex)
	require.NoError(t, err)

	s, err := mgr.Signer("")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, s.Address().Hex())
}

func TestManagerSignerUnknown(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Signer("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

// ---------------------------------------------------------------------------
// persistence
// ---------------------------------------------------------------------------

func TestWithStorePersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallets.json")
	ks := wallet.NewInMemoryKeystore()

	mgr := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	_, err := mgr.AddWithKey("persisted", testPrivKeyHex)
	require.NoError(t, err)
	require.NoError(t, mgr.SetDefault("persisted"))

	mgr2 := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	w, err := mgr2.Default()
	require.NoError(t, err)
	assert.Equal(t, "persisted", w.Name)

	created, err := time.Parse(time.RFC3339, w.CreatedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), created, time.Minute)
}

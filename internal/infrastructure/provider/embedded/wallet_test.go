package embeddedwallet_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"
	"github.com/otcdesk/walletd/internal/infrastructure/db"
	embeddedwallet "github.com/otcdesk/walletd/internal/infrastructure/provider/embedded"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	networkID   string
	initialized map[string]bool
	dialErr     error
}

func (c *fakeChain) GetNetworkID(ctx context.Context) (string, error) {
	if c.dialErr != nil {
		return "", c.dialErr
	}
	return c.networkID, nil
}

func (c *fakeChain) IsAccountInitialized(
	ctx context.Context, address string,
) (bool, error) {
	return c.initialized[address], nil
}

func openInMemoryStore(networkID string) (ports.RepoManager, error) {
	return db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: []interface{}{"", nil},
	})
}

func TestNewWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("binds to the node network", func(t *testing.T) {
		var gotNetworkID string
		wallet, err := embeddedwallet.NewWallet(
			ctx,
			&fakeChain{networkID: "31337"},
			func(networkID string) (ports.RepoManager, error) {
				gotNetworkID = networkID
				return openInMemoryStore(networkID)
			},
		)
		require.NoError(t, err)
		defer wallet.Close(ctx)

		require.Equal(t, "31337", gotNetworkID)
		require.Equal(t, ports.EmbeddedProvider, wallet.Type())
	})

	t.Run("unreachable node fails the connection", func(t *testing.T) {
		_, err := embeddedwallet.NewWallet(
			ctx,
			&fakeChain{dialErr: fmt.Errorf("connection refused")},
			openInMemoryStore,
		)
		require.Error(t, err)
	})
}

func TestAccountsSeedsTestAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh network", func(t *testing.T) {
		chain := &fakeChain{
			networkID:   "31337",
			initialized: map[string]bool{domain.CanonicalTestAddress(): true},
		}
		wallet, err := embeddedwallet.NewWallet(ctx, chain, openInMemoryStore)
		require.NoError(t, err)
		defer wallet.Close(ctx)

		entries, err := wallet.Accounts(ctx)
		require.NoError(t, err)
		require.Len(t, entries, len(domain.TestAccounts()))
		require.Equal(t, domain.CanonicalTestAddress(), entries[0].Address)
		require.Equal(t, domain.AccountAliasPrefix+"test0", entries[0].Alias)

		// seeding happens once, the roster is stable afterwards
		again, err := wallet.Accounts(ctx)
		require.NoError(t, err)
		require.Equal(t, entries, again)
	})

	t.Run("network without test accounts", func(t *testing.T) {
		chain := &fakeChain{networkID: "mainnet", initialized: map[string]bool{}}
		wallet, err := embeddedwallet.NewWallet(ctx, chain, openInMemoryStore)
		require.NoError(t, err)
		defer wallet.Close(ctx)

		entries, err := wallet.Accounts(ctx)
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestCreateAndDeleteAccount(t *testing.T) {
	ctx := context.Background()

	chain := &fakeChain{networkID: "mainnet", initialized: map[string]bool{}}
	wallet, err := embeddedwallet.NewWallet(ctx, chain, openInMemoryStore)
	require.NoError(t, err)
	defer wallet.Close(ctx)

	account, err := wallet.CreateAccount(ctx, "alice", domain.AccountTypeSchnorr)
	require.NoError(t, err)

	entries, err := wallet.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, account.Address, entries[0].Address)

	require.NoError(t, wallet.DeleteAccount(ctx, account.Address))

	entries, err = wallet.Accounts(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

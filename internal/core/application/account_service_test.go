package application_test

import (
	"context"
	"testing"

	"github.com/otcdesk/walletd/internal/core/application"
	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"
	"github.com/stretchr/testify/require"
)

// embeddedFake extends the provider fake with the embedded-session surface.
type embeddedFake struct {
	fakeProvider
	senders []ports.AccountEntry
}

func (p *embeddedFake) CreateAccount(
	ctx context.Context, alias string, accountType domain.AccountType,
) (*domain.Account, error) {
	account, err := domain.NewAccount(accountType, alias)
	if err != nil {
		return nil, err
	}
	p.setEntries(append(p.entries, ports.AccountEntry{
		Address: account.Address,
		Alias:   domain.AccountAliasPrefix + alias,
	}))
	return account, nil
}

func (p *embeddedFake) DeleteAccount(ctx context.Context, address string) error {
	entries := make([]ports.AccountEntry, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Address != address {
			entries = append(entries, e)
		}
	}
	p.setEntries(entries)
	return nil
}

func (p *embeddedFake) RegisterSender(
	ctx context.Context, address, alias string,
) error {
	p.senders = append(p.senders, ports.AccountEntry{
		Address: address, Alias: domain.SenderAliasPrefix + alias,
	})
	return nil
}

func (p *embeddedFake) Senders(ctx context.Context) ([]ports.AccountEntry, error) {
	return p.senders, nil
}

func (p *embeddedFake) AccountMetadata(
	ctx context.Context, aliasOrAddress, key string,
) ([]byte, error) {
	return nil, domain.ErrMetadataNotFound
}

func (p *embeddedFake) SetAccountMetadata(
	ctx context.Context, aliasOrAddress, key string, value []byte,
) error {
	return nil
}

func (p *embeddedFake) PushFeeJuice(
	ctx context.Context, recipient string, entry domain.FeeJuiceEntry,
) error {
	return nil
}

func (p *embeddedFake) PopFeeJuice(
	ctx context.Context, recipient string,
) (*domain.FeeJuiceEntry, error) {
	return nil, domain.ErrFeeJuiceEmpty
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()

	t.Run("create refreshes the roster", func(t *testing.T) {
		provider := &embeddedFake{}
		session := application.NewSessionService(func(
			ctx context.Context, providerType string,
		) (ports.WalletProvider, error) {
			return provider, nil
		})
		svc := application.NewAccountService(session)
		require.NoError(t, session.Connect(ctx, ports.EmbeddedProvider))

		account, accounts, err := svc.CreateAccount(
			ctx, "alice", domain.AccountTypeSchnorr,
		)
		require.NoError(t, err)
		require.NotNil(t, account)
		require.Len(t, accounts, 1)
		require.Equal(t, account.Address, accounts[0].Address)
		require.Equal(t, "alice", accounts[0].Label)

		// the session roster moved along with the store
		require.Len(t, session.Session().Accounts, 1)

		require.NoError(t, svc.DeleteAccount(ctx, account.Address))
		require.Empty(t, session.Session().Accounts)
	})

	t.Run("requires a connected session", func(t *testing.T) {
		session := application.NewSessionService(func(
			ctx context.Context, providerType string,
		) (ports.WalletProvider, error) {
			return &fakeProvider{}, nil
		})
		svc := application.NewAccountService(session)

		_, _, err := svc.CreateAccount(ctx, "alice", domain.AccountTypeSchnorr)
		require.ErrorIs(t, err, application.ErrNotConnected)
	})

	t.Run("requires an embedded session", func(t *testing.T) {
		session := application.NewSessionService(func(
			ctx context.Context, providerType string,
		) (ports.WalletProvider, error) {
			return &fakeProvider{}, nil
		})
		svc := application.NewAccountService(session)
		require.NoError(t, session.Connect(ctx, ports.ExtensionProvider))

		_, _, err := svc.CreateAccount(ctx, "alice", domain.AccountTypeSchnorr)
		require.ErrorIs(t, err, application.ErrNoEmbeddedSession)
	})
}

package embeddedwallet

import (
	"context"
	"fmt"

	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"

	log "github.com/sirupsen/logrus"
)

// StoreFactory opens the wallet store bound to a network namespace. The
// namespace keeps accounts of different networks apart while surviving
// process restarts.
type StoreFactory func(networkID string) (ports.RepoManager, error)

// Wallet is the embedded provider: a full local session owning the durable
// account store of the target network.
type Wallet struct {
	chain ports.ChainSource
	repo  ports.RepoManager
}

// NewWallet dials the node to resolve the target network and opens the
// matching store. Node failures surface as connection failures here.
func NewWallet(
	ctx context.Context, chain ports.ChainSource, openStore StoreFactory,
) (*Wallet, error) {
	networkID, err := chain.GetNetworkID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reach node: %w", err)
	}
	repo, err := openStore(networkID)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet store: %w", err)
	}
	log.Debugf("embedded wallet bound to network %s", networkID)
	return &Wallet{chain, repo}, nil
}

func (w *Wallet) Type() string {
	return ports.EmbeddedProvider
}

// Accounts returns the stored roster. On a freshly initialized network it
// first seeds the well-known test accounts: only when the canonical test
// account is initialized on chain and not yet stored locally, so the seeding
// runs at most once per store.
func (w *Wallet) Accounts(ctx context.Context) ([]ports.AccountEntry, error) {
	aliased, err := w.repo.Accounts().ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	if !containsAddress(aliased, domain.CanonicalTestAddress()) {
		initialized, err := w.chain.IsAccountInitialized(
			ctx, domain.CanonicalTestAddress(),
		)
		if err != nil {
			return nil, err
		}
		if initialized {
			for _, account := range domain.TestAccounts() {
				if containsAddress(aliased, account.Address) {
					continue
				}
				if err := w.repo.Accounts().StoreAccount(ctx, account); err != nil {
					return nil, err
				}
				aliased = append(aliased, domain.AliasedAddress{
					Alias:   domain.AccountAliasPrefix + account.Alias,
					Address: account.Address,
				})
			}
			log.Debugf("seeded %d test accounts", len(domain.TestAccounts()))
		}
	}

	return toAccountEntries(aliased), nil
}

func (w *Wallet) Close(ctx context.Context) error {
	w.repo.Close()
	return nil
}

func (w *Wallet) CreateAccount(
	ctx context.Context, alias string, accountType domain.AccountType,
) (*domain.Account, error) {
	account, err := domain.NewAccount(accountType, alias)
	if err != nil {
		return nil, err
	}
	if err := w.repo.Accounts().StoreAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

func (w *Wallet) DeleteAccount(ctx context.Context, address string) error {
	return w.repo.Accounts().DeleteAccount(ctx, address)
}

func (w *Wallet) RegisterSender(
	ctx context.Context, address, alias string,
) error {
	return w.repo.Accounts().StoreSender(ctx, address, alias)
}

func (w *Wallet) Senders(ctx context.Context) ([]ports.AccountEntry, error) {
	aliased, err := w.repo.Accounts().ListSenders(ctx)
	if err != nil {
		return nil, err
	}
	return toAccountEntries(aliased), nil
}

func (w *Wallet) AccountMetadata(
	ctx context.Context, aliasOrAddress, key string,
) ([]byte, error) {
	return w.repo.Accounts().RetrieveAccountMetadata(ctx, aliasOrAddress, key)
}

func (w *Wallet) SetAccountMetadata(
	ctx context.Context, aliasOrAddress, key string, value []byte,
) error {
	return w.repo.Accounts().StoreAccountMetadata(ctx, aliasOrAddress, key, value)
}

func (w *Wallet) PushFeeJuice(
	ctx context.Context, recipient string, entry domain.FeeJuiceEntry,
) error {
	return w.repo.FeeJuice().Push(ctx, recipient, entry)
}

func (w *Wallet) PopFeeJuice(
	ctx context.Context, recipient string,
) (*domain.FeeJuiceEntry, error) {
	return w.repo.FeeJuice().Pop(ctx, recipient)
}

func containsAddress(aliased []domain.AliasedAddress, address string) bool {
	for _, entry := range aliased {
		if entry.Address == address {
			return true
		}
	}
	return false
}

func toAccountEntries(aliased []domain.AliasedAddress) []ports.AccountEntry {
	entries := make([]ports.AccountEntry, 0, len(aliased))
	for _, entry := range aliased {
		entries = append(entries, ports.AccountEntry{
			Address: entry.Address,
			Alias:   entry.Alias,
		})
	}
	return entries
}

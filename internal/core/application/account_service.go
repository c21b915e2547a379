package application

import (
	"context"
	"fmt"

	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"
)

// AccountService exposes the account-store operations of the embedded
// provider to the UI layer. Every operation fails with ErrNoEmbeddedSession
// when the session is not bound to an embedded wallet.
type AccountService struct {
	session *SessionService
}

func NewAccountService(session *SessionService) *AccountService {
	return &AccountService{session}
}

// CreateAccount generates and stores a new account, then refreshes the
// session roster so the caller can select the new account right away.
func (s *AccountService) CreateAccount(
	ctx context.Context, alias string, accountType domain.AccountType,
) (*domain.Account, []WalletAccount, error) {
	wallet, err := s.embeddedSession()
	if err != nil {
		return nil, nil, err
	}

	account, err := wallet.CreateAccount(ctx, alias, accountType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	accounts, err := s.session.RefreshAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return account, accounts, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, address string) error {
	wallet, err := s.embeddedSession()
	if err != nil {
		return err
	}
	if err := wallet.DeleteAccount(ctx, address); err != nil {
		return err
	}
	_, err = s.session.RefreshAccounts(ctx)
	return err
}

func (s *AccountService) RegisterSender(
	ctx context.Context, address, alias string,
) error {
	wallet, err := s.embeddedSession()
	if err != nil {
		return err
	}
	return wallet.RegisterSender(ctx, address, alias)
}

func (s *AccountService) ListSenders(ctx context.Context) ([]WalletAccount, error) {
	wallet, err := s.embeddedSession()
	if err != nil {
		return nil, err
	}
	entries, err := wallet.Senders(ctx)
	if err != nil {
		return nil, err
	}
	return mapAccountEntries(entries), nil
}

func (s *AccountService) AccountMetadata(
	ctx context.Context, aliasOrAddress, key string,
) ([]byte, error) {
	wallet, err := s.embeddedSession()
	if err != nil {
		return nil, err
	}
	return wallet.AccountMetadata(ctx, aliasOrAddress, key)
}

func (s *AccountService) SetAccountMetadata(
	ctx context.Context, aliasOrAddress, key string, value []byte,
) error {
	wallet, err := s.embeddedSession()
	if err != nil {
		return err
	}
	return wallet.SetAccountMetadata(ctx, aliasOrAddress, key, value)
}

func (s *AccountService) PushFeeJuice(
	ctx context.Context, recipient string, entry domain.FeeJuiceEntry,
) error {
	wallet, err := s.embeddedSession()
	if err != nil {
		return err
	}
	return wallet.PushFeeJuice(ctx, recipient, entry)
}

func (s *AccountService) PopFeeJuice(
	ctx context.Context, recipient string,
) (*domain.FeeJuiceEntry, error) {
	wallet, err := s.embeddedSession()
	if err != nil {
		return nil, err
	}
	return wallet.PopFeeJuice(ctx, recipient)
}

func (s *AccountService) embeddedSession() (ports.EmbeddedSession, error) {
	provider := s.session.Provider()
	if provider == nil {
		return nil, ErrNotConnected
	}
	wallet, ok := provider.(ports.EmbeddedSession)
	if !ok {
		return nil, ErrNoEmbeddedSession
	}
	return wallet, nil
}

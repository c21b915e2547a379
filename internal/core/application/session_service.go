package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/otcdesk/walletd/internal/core/ports"

	log "github.com/sirupsen/logrus"
)

// ProviderFactory builds a live wallet provider of the given type. Building
// the embedded provider dials the node and opens the wallet store, so it can
// fail.
type ProviderFactory func(
	ctx context.Context, providerType string,
) (ports.WalletProvider, error)

// SessionService owns the in-memory connection lifecycle: at most one live
// provider, the current account roster and the active account. Construct it
// once at application start and inject it, there is no package-level
// instance.
type SessionService struct {
	buildProvider ProviderFactory

	lock         *sync.Mutex
	status       Status
	providerType string
	provider     ports.WalletProvider
	accounts     []WalletAccount
	active       *WalletAccount

	subsLock *sync.Mutex
	subs     map[chan Session]struct{}
}

func NewSessionService(buildProvider ProviderFactory) *SessionService {
	return &SessionService{
		buildProvider: buildProvider,
		lock:          &sync.Mutex{},
		status:        StatusDisconnected,
		subsLock:      &sync.Mutex{},
		subs:          make(map[chan Session]struct{}),
	}
}

// Connect establishes a session against the given provider. It is a no-op
// while another connect is in flight. Any previous session is torn down
// first, and any failure leaves the service fully disconnected, no partial
// session survives.
func (s *SessionService) Connect(ctx context.Context, providerType string) error {
	s.lock.Lock()
	if s.status == StatusConnecting {
		s.lock.Unlock()
		return nil
	}
	s.disconnect(ctx)
	s.status = StatusConnecting
	s.providerType = providerType
	s.lock.Unlock()
	s.notify()

	provider, err := s.buildProvider(ctx, providerType)
	if err != nil {
		s.Disconnect(ctx)
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, providerType, err)
	}

	s.lock.Lock()
	s.provider = provider
	s.lock.Unlock()

	if _, err := s.RefreshAccounts(ctx); err != nil {
		s.Disconnect(ctx)
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, providerType, err)
	}

	s.lock.Lock()
	s.status = StatusConnected
	s.lock.Unlock()
	s.notify()
	return nil
}

// Disconnect tears the session down. Provider teardown errors are logged,
// never returned: from the caller's point of view disconnecting always
// succeeds.
func (s *SessionService) Disconnect(ctx context.Context) {
	s.lock.Lock()
	s.disconnect(ctx)
	s.lock.Unlock()
	s.notify()
}

// RefreshAccounts re-queries the provider roster and reconciles the active
// account: kept if still present, otherwise the first account, otherwise
// none. The new roster is returned for direct use by callers.
func (s *SessionService) RefreshAccounts(ctx context.Context) ([]WalletAccount, error) {
	s.lock.Lock()
	provider := s.provider
	s.lock.Unlock()

	mapped := make([]WalletAccount, 0)
	if provider != nil {
		entries, err := provider.Accounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh accounts: %w", err)
		}
		mapped = mapAccountEntries(entries)
	}

	s.lock.Lock()
	s.accounts = mapped
	if len(mapped) == 0 {
		s.active = nil
	} else {
		next := mapped[0]
		if s.active != nil {
			for _, account := range mapped {
				if account.Address == s.active.Address {
					next = account
					break
				}
			}
		}
		s.active = &next
	}
	s.lock.Unlock()
	s.notify()

	return mapped, nil
}

// SetActiveAccount switches the active account. No-op if the address is
// already active or not part of the current roster.
func (s *SessionService) SetActiveAccount(address string) {
	s.lock.Lock()
	if s.active != nil && s.active.Address == address {
		s.lock.Unlock()
		return
	}
	var next *WalletAccount
	for _, account := range s.accounts {
		if account.Address == address {
			account := account
			next = &account
			break
		}
	}
	if next == nil {
		s.lock.Unlock()
		return
	}
	s.active = next
	s.lock.Unlock()
	s.notify()
}

// Session returns a snapshot of the current state.
func (s *SessionService) Session() Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session()
}

// Provider returns the live provider, nil when disconnected.
func (s *SessionService) Provider() ports.WalletProvider {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.provider
}

// Subscribe registers a listener for session snapshots. Slow listeners miss
// updates instead of blocking the session.
func (s *SessionService) Subscribe() chan Session {
	s.subsLock.Lock()
	defer s.subsLock.Unlock()

	sub := make(chan Session, 10)
	s.subs[sub] = struct{}{}
	return sub
}

func (s *SessionService) Unsubscribe(sub chan Session) {
	s.subsLock.Lock()
	defer s.subsLock.Unlock()

	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub)
	}
}

func (s *SessionService) disconnect(ctx context.Context) {
	if s.provider != nil {
		if err := s.provider.Close(ctx); err != nil {
			log.WithError(err).Warn("error while tearing down wallet provider")
		}
	}
	s.provider = nil
	s.status = StatusDisconnected
	s.providerType = ""
	s.accounts = nil
	s.active = nil
}

func (s *SessionService) session() Session {
	accounts := make([]WalletAccount, len(s.accounts))
	copy(accounts, s.accounts)
	var active *WalletAccount
	if s.active != nil {
		activeCopy := *s.active
		active = &activeCopy
	}
	return Session{
		Status:        s.status,
		ProviderType:  s.providerType,
		Accounts:      accounts,
		ActiveAccount: active,
	}
}

func (s *SessionService) notify() {
	snapshot := s.Session()

	s.subsLock.Lock()
	defer s.subsLock.Unlock()
	for sub := range s.subs {
		select {
		case sub <- snapshot:
		default:
			log.Debug("session listener is too slow, dropping update")
		}
	}
}

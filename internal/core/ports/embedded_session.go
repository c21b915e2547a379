package ports

import (
	"context"

	"github.com/otcdesk/walletd/internal/core/domain"
)

// EmbeddedSession is the extended surface of the embedded provider: on top of
// the roster it owns the durable account store of the target network.
// Extension sessions never expose these operations, secret material stays on
// the other side of the bridge.
type EmbeddedSession interface {
	WalletProvider
	CreateAccount(
		ctx context.Context, alias string, accountType domain.AccountType,
	) (*domain.Account, error)
	DeleteAccount(ctx context.Context, address string) error
	RegisterSender(ctx context.Context, address, alias string) error
	Senders(ctx context.Context) ([]AccountEntry, error)
	AccountMetadata(
		ctx context.Context, aliasOrAddress, key string,
	) ([]byte, error)
	SetAccountMetadata(
		ctx context.Context, aliasOrAddress, key string, value []byte,
	) error
	PushFeeJuice(
		ctx context.Context, recipient string, entry domain.FeeJuiceEntry,
	) error
	PopFeeJuice(
		ctx context.Context, recipient string,
	) (*domain.FeeJuiceEntry, error)
}

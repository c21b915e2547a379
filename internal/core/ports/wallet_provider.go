package ports

import "context"

const (
	EmbeddedProvider  = "embedded"
	ExtensionProvider = "extension"
)

// AccountEntry is the uniform account shape returned by any provider. Alias
// may be empty or carry a namespace prefix depending on the provider.
type AccountEntry struct {
	Address string
	Alias   string
}

// WalletProvider is the wallet backend a session binds to: either a full
// local session (embedded) or a bridge to an external signer (extension).
type WalletProvider interface {
	Type() string
	// Accounts returns the provider's current account roster.
	Accounts(ctx context.Context) ([]AccountEntry, error)
	// Close releases provider resources. Embedded sessions may require
	// asynchronous teardown.
	Close(ctx context.Context) error
}

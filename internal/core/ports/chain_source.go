package ports

import "context"

// ChainSource is the remote node dependency of the embedded provider.
// Failures to reach it must surface as connection failures.
type ChainSource interface {
	// GetNetworkID returns the value identifying the target network, used to
	// derive the wallet store namespace.
	GetNetworkID(ctx context.Context) (string, error)
	// IsAccountInitialized reports whether the account at the given address
	// is initialized on chain.
	IsAccountInitialized(ctx context.Context, address string) (bool, error)
}

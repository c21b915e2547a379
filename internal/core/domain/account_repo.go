package domain

import "context"

// AccountRepository owns durable account and sender records plus the alias
// index. Storing an account does not validate that the address matches its
// (secret, salt, type), that contract belongs to the caller.
type AccountRepository interface {
	// StoreAccount persists the four per-address fields and, if the record
	// carries an alias, the matching alias index entry. Overwrites any
	// existing record for the same address.
	StoreAccount(ctx context.Context, account Account) error
	// RetrieveAccount reconstructs a full record. Returns ErrAccountNotFound
	// when the secret-key field is absent.
	RetrieveAccount(ctx context.Context, address string) (*Account, error)
	// StoreSender registers a counterparty address under an alias. Sender
	// records never contain key material.
	StoreSender(ctx context.Context, address, alias string) error
	// StoreAccountMetadata attaches an arbitrary value to an account resolved
	// by alias or address.
	StoreAccountMetadata(
		ctx context.Context, aliasOrAddress, key string, value []byte,
	) error
	// RetrieveAccountMetadata returns ErrMetadataNotFound when the key was
	// never stored for the account.
	RetrieveAccountMetadata(
		ctx context.Context, aliasOrAddress, key string,
	) ([]byte, error)
	// ListAccounts scans the alias index for the accounts namespace. Order is
	// the underlying store's iteration order.
	ListAccounts(ctx context.Context) ([]AliasedAddress, error)
	// ListSenders scans the alias index for the senders namespace.
	ListSenders(ctx context.Context) ([]AliasedAddress, error)
	// DeleteAccount removes the per-address fields, then re-scans the alias
	// index to drop the matching entry. The full scan is accepted, deletions
	// are rare and account counts small.
	DeleteAccount(ctx context.Context, address string) error
	Close()
}

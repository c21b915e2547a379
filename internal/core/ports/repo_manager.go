package ports

import (
	"github.com/otcdesk/walletd/internal/core/domain"
)

// RepoManager gives access to the repositories of a wallet store. One store
// maps to one network namespace and is assumed to be owned by a single
// process.
type RepoManager interface {
	Accounts() domain.AccountRepository
	FeeJuice() domain.FeeJuiceRepository
	Close()
}

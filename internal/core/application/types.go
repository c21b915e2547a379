package application

import (
	"strings"

	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// WalletAccount is the uniform account shape the UI layer renders.
type WalletAccount struct {
	Address string
	Label   string
}

// Session is an immutable snapshot of the session state. ActiveAccount, when
// set, always references an element of Accounts.
type Session struct {
	Status        Status
	ProviderType  string
	Accounts      []WalletAccount
	ActiveAccount *WalletAccount
}

func mapAccountEntries(entries []ports.AccountEntry) []WalletAccount {
	accounts := make([]WalletAccount, 0, len(entries))
	for _, entry := range entries {
		// entries without an address could not be mapped, drop them instead
		// of failing the whole refresh
		if len(entry.Address) <= 0 {
			continue
		}
		label := strings.TrimPrefix(entry.Alias, domain.AccountAliasPrefix)
		label = strings.TrimPrefix(label, domain.SenderAliasPrefix)
		if len(label) <= 0 {
			label = entry.Address
			if len(label) > 10 {
				label = label[:10]
			}
		}
		accounts = append(accounts, WalletAccount{
			Address: entry.Address,
			Label:   label,
		})
	}
	return accounts
}

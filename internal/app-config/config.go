package appconfig

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/otcdesk/walletd/internal/core/application"
	"github.com/otcdesk/walletd/internal/core/ports"
	wsbridge "github.com/otcdesk/walletd/internal/infrastructure/bridge"
	"github.com/otcdesk/walletd/internal/infrastructure/db"
	nodeclient "github.com/otcdesk/walletd/internal/infrastructure/node"
	embeddedwallet "github.com/otcdesk/walletd/internal/infrastructure/provider/embedded"
	extensionwallet "github.com/otcdesk/walletd/internal/infrastructure/provider/extension"
)

// Config glues the infrastructure together: the node client, the extension
// bridge and the provider factory feeding the single session service.
type Config struct {
	DbType  string
	DbDir   string
	NodeURL string

	chain    ports.ChainSource
	hub      *wsbridge.Hub
	session  *application.SessionService
	accounts *application.AccountService
}

func (c *Config) SessionService() (*application.SessionService, error) {
	if c.session == nil {
		if err := c.build(); err != nil {
			return nil, err
		}
	}
	return c.session, nil
}

func (c *Config) AccountService() (*application.AccountService, error) {
	if c.accounts == nil {
		if err := c.build(); err != nil {
			return nil, err
		}
	}
	return c.accounts, nil
}

func (c *Config) BridgeHub() *wsbridge.Hub {
	if c.hub == nil {
		c.hub = wsbridge.NewHub()
	}
	return c.hub
}

func (c *Config) build() error {
	chain, err := nodeclient.NewClient(c.NodeURL)
	if err != nil {
		return fmt.Errorf("failed to setup node client: %w", err)
	}
	c.chain = chain

	hub := c.BridgeHub()

	// each network gets its own store directory so that switching nodes
	// never mixes accounts of different networks
	openStore := func(networkID string) (ports.RepoManager, error) {
		return db.NewService(db.ServiceConfig{
			DataStoreType: c.DbType,
			DataStoreConfig: []interface{}{
				filepath.Join(c.DbDir, networkID), nil,
			},
		})
	}

	buildProvider := func(
		ctx context.Context, providerType string,
	) (ports.WalletProvider, error) {
		switch providerType {
		case ports.EmbeddedProvider:
			return embeddedwallet.NewWallet(ctx, c.chain, openStore)
		case ports.ExtensionProvider:
			channel, err := hub.Channel()
			if err != nil {
				return nil, err
			}
			return extensionwallet.NewWallet(channel), nil
		default:
			return nil, application.ErrUnknownProvider
		}
	}

	c.session = application.NewSessionService(buildProvider)
	c.accounts = application.NewAccountService(c.session)
	return nil
}

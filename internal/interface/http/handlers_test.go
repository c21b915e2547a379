package httpservice

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/otcdesk/walletd/internal/core/application"
	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"
	wsbridge "github.com/otcdesk/walletd/internal/infrastructure/bridge"
	"github.com/stretchr/testify/require"
)

// walletStub is an in-memory embedded session backing the handler tests.
type walletStub struct {
	accounts []ports.AccountEntry
	metadata map[string][]byte
}

func newWalletStub() *walletStub {
	return &walletStub{metadata: make(map[string][]byte)}
}

func (w *walletStub) Type() string { return ports.EmbeddedProvider }

func (w *walletStub) Accounts(ctx context.Context) ([]ports.AccountEntry, error) {
	return w.accounts, nil
}

func (w *walletStub) Close(ctx context.Context) error { return nil }

func (w *walletStub) CreateAccount(
	ctx context.Context, alias string, accountType domain.AccountType,
) (*domain.Account, error) {
	account, err := domain.NewAccount(accountType, alias)
	if err != nil {
		return nil, err
	}
	w.accounts = append(w.accounts, ports.AccountEntry{
		Address: account.Address,
		Alias:   domain.AccountAliasPrefix + alias,
	})
	return account, nil
}

func (w *walletStub) DeleteAccount(ctx context.Context, address string) error {
	accounts := make([]ports.AccountEntry, 0, len(w.accounts))
	for _, a := range w.accounts {
		if a.Address != address {
			accounts = append(accounts, a)
		}
	}
	w.accounts = accounts
	return nil
}

func (w *walletStub) RegisterSender(
	ctx context.Context, address, alias string,
) error {
	return nil
}

func (w *walletStub) Senders(ctx context.Context) ([]ports.AccountEntry, error) {
	return nil, nil
}

func (w *walletStub) AccountMetadata(
	ctx context.Context, aliasOrAddress, key string,
) ([]byte, error) {
	value, ok := w.metadata[aliasOrAddress+"/"+key]
	if !ok {
		return nil, domain.ErrMetadataNotFound
	}
	return value, nil
}

func (w *walletStub) SetAccountMetadata(
	ctx context.Context, aliasOrAddress, key string, value []byte,
) error {
	w.metadata[aliasOrAddress+"/"+key] = value
	return nil
}

func (w *walletStub) PushFeeJuice(
	ctx context.Context, recipient string, entry domain.FeeJuiceEntry,
) error {
	return nil
}

func (w *walletStub) PopFeeJuice(
	ctx context.Context, recipient string,
) (*domain.FeeJuiceEntry, error) {
	return nil, domain.ErrFeeJuiceEmpty
}

func newTestService(factory application.ProviderFactory) *Service {
	session := application.NewSessionService(factory)
	return NewService(
		Config{Port: 0, NoCors: true},
		session,
		application.NewAccountService(session),
		wsbridge.NewHub(),
	)
}

func do(
	t *testing.T, router http.Handler, method, path, body string,
) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("{}")
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSessionEndpoints(t *testing.T) {
	wallet := newWalletStub()
	svc := newTestService(func(
		ctx context.Context, providerType string,
	) (ports.WalletProvider, error) {
		return wallet, nil
	})
	router := svc.router()

	resp := do(t, router, http.MethodGet, "/v1/session", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var session sessionDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	require.Equal(t, "disconnected", session.Status)

	resp = do(
		t, router, http.MethodPost, "/v1/session/connect",
		`{"provider": "embedded"}`,
	)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	require.Equal(t, "connected", session.Status)
	require.Equal(t, "embedded", session.ProviderType)

	resp = do(t, router, http.MethodPost, "/v1/session/disconnect", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	require.Equal(t, "disconnected", session.Status)
}

func TestConnectErrorMapping(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		svc := newTestService(func(
			ctx context.Context, providerType string,
		) (ports.WalletProvider, error) {
			return nil, application.ErrUnknownProvider
		})

		resp := do(
			t, svc.router(), http.MethodPost, "/v1/session/connect",
			`{"provider": "ledger"}`,
		)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		svc := newTestService(func(
			ctx context.Context, providerType string,
		) (ports.WalletProvider, error) {
			return nil, fmt.Errorf("connection refused")
		})

		resp := do(
			t, svc.router(), http.MethodPost, "/v1/session/connect",
			`{"provider": "embedded"}`,
		)
		require.Equal(t, http.StatusBadGateway, resp.Code)
	})
}

func TestCreateAccountEndpoint(t *testing.T) {
	wallet := newWalletStub()
	svc := newTestService(func(
		ctx context.Context, providerType string,
	) (ports.WalletProvider, error) {
		return wallet, nil
	})
	router := svc.router()

	resp := do(
		t, router, http.MethodPost, "/v1/session/connect",
		`{"provider": "embedded"}`,
	)
	require.Equal(t, http.StatusOK, resp.Code)

	t.Run("returns the signing public key", func(t *testing.T) {
		resp := do(
			t, router, http.MethodPost, "/v1/accounts",
			`{"alias": "alice", "type": "schnorr"}`,
		)
		require.Equal(t, http.StatusOK, resp.Code)

		var created struct {
			Address   string `json:"address"`
			Alias     string `json:"alias"`
			PublicKey string `json:"publicKey"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
		require.NotEmpty(t, created.Address)
		require.Equal(t, "alice", created.Alias)

		pubkey, err := hex.DecodeString(created.PublicKey)
		require.NoError(t, err)
		require.NotEmpty(t, pubkey)
	})

	t.Run("unknown account type", func(t *testing.T) {
		resp := do(
			t, router, http.MethodPost, "/v1/accounts",
			`{"alias": "bob", "type": "ed25519"}`,
		)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestNotFoundAndConflictMapping(t *testing.T) {
	wallet := newWalletStub()
	svc := newTestService(func(
		ctx context.Context, providerType string,
	) (ports.WalletProvider, error) {
		return wallet, nil
	})
	router := svc.router()

	resp := do(
		t, router, http.MethodPost, "/v1/session/connect",
		`{"provider": "embedded"}`,
	)
	require.Equal(t, http.StatusOK, resp.Code)

	t.Run("missing metadata", func(t *testing.T) {
		resp := do(t, router, http.MethodGet, "/v1/accounts/alice/metadata/note", "")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("empty fee-juice stack", func(t *testing.T) {
		resp := do(t, router, http.MethodDelete, "/v1/fee-juice/0xaaaa", "")
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("no session", func(t *testing.T) {
		resp := do(t, router, http.MethodPost, "/v1/session/disconnect", "")
		require.Equal(t, http.StatusOK, resp.Code)

		resp = do(
			t, router, http.MethodPost, "/v1/accounts",
			`{"alias": "carol", "type": "schnorr"}`,
		)
		require.Equal(t, http.StatusConflict, resp.Code)
	})
}

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestApp() *cli.App {
	app := cli.NewApp()
	app.Name = "walletd"
	app.Flags = []cli.Flag{urlFlag}
	app.Commands = append(cli.Commands{}, sessionCmd, accountCmd, senderCmd)
	return app
}

func TestSessionCommands(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotMethod = r.URL.Path, r.Method
			// nolint:all
			w.Write([]byte(`{"status": "disconnected", "accounts": []}`))
		},
	))
	defer server.Close()

	app := newTestApp()

	require.NoError(t, app.Run(
		[]string{"walletd", "--url", server.URL, "session", "status"},
	))
	require.Equal(t, "/v1/session", gotPath)
	require.Equal(t, http.MethodGet, gotMethod)

	require.NoError(t, app.Run(
		[]string{"walletd", "--url", server.URL, "session", "connect"},
	))
	require.Equal(t, "/v1/session/connect", gotPath)
	require.Equal(t, http.MethodPost, gotMethod)
}

func TestAccountCreateCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/accounts", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			// nolint:all
			w.Write([]byte(`{"address": "0xaaaa", "alias": "alice"}`))
		},
	))
	defer server.Close()

	app := newTestApp()
	require.NoError(t, app.Run([]string{
		"walletd", "--url", server.URL,
		"account", "create", "--alias", "alice", "--type", "schnorr",
	}))
}

func TestCommandErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "unknown wallet provider"}`, http.StatusBadRequest)
		},
	))
	defer server.Close()

	app := newTestApp()
	err := app.Run([]string{
		"walletd", "--url", server.URL,
		"session", "connect", "--provider", "ledger",
	})
	require.ErrorContains(t, err, "unknown wallet provider")
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// flags
var (
	urlFlag = &cli.StringFlag{
		Name:  "url",
		Usage: "walletd base URL",
		Value: "http://localhost:7080",
	}
	providerFlag = &cli.StringFlag{
		Name:  "provider",
		Usage: "wallet provider to connect (embedded | extension)",
		Value: "embedded",
	}
	aliasFlag = &cli.StringFlag{
		Name:     "alias",
		Usage:    "account alias",
		Required: true,
	}
	typeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "account type (schnorr | ecdsasecp256r1 | ecdsasecp256k1)",
		Value: "schnorr",
	}
	addressFlag = &cli.StringFlag{
		Name:     "address",
		Usage:    "account address",
		Required: true,
	}
)

// commands
var (
	sessionCmd = &cli.Command{
		Name:  "session",
		Usage: "Manage the wallet session",
		Subcommands: append(
			cli.Commands{},
			sessionStatusCmd,
			sessionConnectCmd,
			sessionDisconnectCmd,
		),
	}
	sessionStatusCmd = &cli.Command{
		Name:   "status",
		Usage:  "Get the current session snapshot",
		Action: sessionStatusAction,
	}
	sessionConnectCmd = &cli.Command{
		Name:   "connect",
		Usage:  "Connect a wallet provider",
		Action: sessionConnectAction,
		Flags:  []cli.Flag{providerFlag},
	}
	sessionDisconnectCmd = &cli.Command{
		Name:   "disconnect",
		Usage:  "Tear the session down",
		Action: sessionDisconnectAction,
	}

	accountCmd = &cli.Command{
		Name:  "account",
		Usage: "Manage wallet accounts",
		Subcommands: append(
			cli.Commands{},
			accountListCmd,
			accountCreateCmd,
			accountDeleteCmd,
		),
	}
	accountListCmd = &cli.Command{
		Name:   "list",
		Usage:  "List the account roster",
		Action: accountListAction,
	}
	accountCreateCmd = &cli.Command{
		Name:   "create",
		Usage:  "Create a new account on the embedded wallet",
		Action: accountCreateAction,
		Flags:  []cli.Flag{aliasFlag, typeFlag},
	}
	accountDeleteCmd = &cli.Command{
		Name:   "delete",
		Usage:  "Delete an account from the embedded wallet",
		Action: accountDeleteAction,
		Flags:  []cli.Flag{addressFlag},
	}

	senderCmd = &cli.Command{
		Name:  "sender",
		Usage: "Manage the sender address book",
		Subcommands: append(
			cli.Commands{},
			senderListCmd,
			senderRegisterCmd,
		),
	}
	senderListCmd = &cli.Command{
		Name:   "list",
		Usage:  "List registered senders",
		Action: senderListAction,
	}
	senderRegisterCmd = &cli.Command{
		Name:   "register",
		Usage:  "Register a sender address under an alias",
		Action: senderRegisterAction,
		Flags:  []cli.Flag{addressFlag, aliasFlag},
	}
)

func sessionStatusAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/session", ctx.String("url"))
	session, err := call(http.MethodGet, url, "")
	if err != nil {
		return err
	}

	fmt.Println(session)
	return nil
}

func sessionConnectAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/session/connect", ctx.String("url"))
	body := fmt.Sprintf(`{"provider": "%s"}`, ctx.String("provider"))
	session, err := call(http.MethodPost, url, body)
	if err != nil {
		return err
	}

	fmt.Println(session)
	return nil
}

func sessionDisconnectAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/session/disconnect", ctx.String("url"))
	if _, err := call(http.MethodPost, url, "{}"); err != nil {
		return err
	}

	fmt.Println("session disconnected")
	return nil
}

func accountListAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/accounts", ctx.String("url"))
	accounts, err := call(http.MethodGet, url, "")
	if err != nil {
		return err
	}

	fmt.Println(accounts)
	return nil
}

func accountCreateAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/accounts", ctx.String("url"))
	body := fmt.Sprintf(
		`{"alias": "%s", "type": "%s"}`, ctx.String("alias"), ctx.String("type"),
	)
	account, err := call(http.MethodPost, url, body)
	if err != nil {
		return err
	}

	fmt.Println(account)
	return nil
}

func accountDeleteAction(ctx *cli.Context) error {
	url := fmt.Sprintf(
		"%s/v1/accounts/%s", ctx.String("url"), ctx.String("address"),
	)
	if _, err := call(http.MethodDelete, url, ""); err != nil {
		return err
	}

	fmt.Println("account deleted")
	return nil
}

func senderListAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/senders", ctx.String("url"))
	senders, err := call(http.MethodGet, url, "")
	if err != nil {
		return err
	}

	fmt.Println(senders)
	return nil
}

func senderRegisterAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/senders", ctx.String("url"))
	body := fmt.Sprintf(
		`{"address": "%s", "alias": "%s"}`,
		ctx.String("address"), ctx.String("alias"),
	)
	if _, err := call(http.MethodPost, url, body); err != nil {
		return err
	}

	fmt.Println("sender registered")
	return nil
}

func call(method, url, body string) (string, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return "", err
	}
	if len(body) > 0 {
		req.Header.Add("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	// nolint:all
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request failed: %s", strings.TrimSpace(string(buf)))
	}
	return strings.TrimSpace(string(buf)), nil
}

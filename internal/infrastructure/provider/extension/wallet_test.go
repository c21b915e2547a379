package extensionwallet_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/otcdesk/walletd/internal/core/ports"
	extensionwallet "github.com/otcdesk/walletd/internal/infrastructure/provider/extension"
	"github.com/stretchr/testify/require"
)

// loopbackChannel plays the extension side of the bridge in-process: every
// posted request is answered by the configured handler.
type loopbackChannel struct {
	handler  func(reqType string, messageID string) []byte
	incoming chan []byte

	closeOnce sync.Once
}

func newLoopback(
	handler func(reqType, messageID string) []byte,
) *loopbackChannel {
	return &loopbackChannel{
		handler:  handler,
		incoming: make(chan []byte, 10),
	}
}

func (c *loopbackChannel) Post(ctx context.Context, msg []byte) error {
	var req struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		return err
	}
	if resp := c.handler(req.Type, req.MessageID); resp != nil {
		c.incoming <- resp
	}
	return nil
}

func (c *loopbackChannel) Incoming() <-chan []byte {
	return c.incoming
}

func (c *loopbackChannel) Close() error {
	c.closeOnce.Do(func() { close(c.incoming) })
	return nil
}

func respond(messageID string, value interface{}) []byte {
	buf, _ := json.Marshal(map[string]interface{}{
		"messageId": messageID,
		"response":  map[string]interface{}{"value": value},
	})
	return buf
}

func respondError(messageID, errMsg string) []byte {
	buf, _ := json.Marshal(map[string]interface{}{
		"messageId": messageID,
		"response":  map[string]interface{}{"error": errMsg},
	})
	return buf
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed entry shapes", func(t *testing.T) {
		channel := newLoopback(func(reqType, messageID string) []byte {
			require.Equal(t, "getAccounts", reqType)
			return respond(messageID, []interface{}{
				"0xaaaa",
				map[string]string{"address": "0xbbbb", "alias": "accounts:bob"},
			})
		})
		wallet := extensionwallet.NewWallet(channel)
		defer wallet.Close(ctx)

		entries, err := wallet.Accounts(ctx)
		require.NoError(t, err)
		require.Equal(t, []ports.AccountEntry{
			{Address: "0xaaaa"},
			{Address: "0xbbbb", Alias: "accounts:bob"},
		}, entries)
	})

	t.Run("malformed entries are dropped", func(t *testing.T) {
		channel := newLoopback(func(reqType, messageID string) []byte {
			return respond(messageID, []interface{}{
				42,
				map[string]string{"alias": "accounts:noaddr"},
				"0xaaaa",
			})
		})
		wallet := extensionwallet.NewWallet(channel)
		defer wallet.Close(ctx)

		entries, err := wallet.Accounts(ctx)
		require.NoError(t, err)
		require.Equal(t, []ports.AccountEntry{{Address: "0xaaaa"}}, entries)
	})

	t.Run("remote error rejects the call", func(t *testing.T) {
		channel := newLoopback(func(reqType, messageID string) []byte {
			return respondError(messageID, "wallet is locked")
		})
		wallet := extensionwallet.NewWallet(channel)
		defer wallet.Close(ctx)

		_, err := wallet.Accounts(ctx)
		require.ErrorContains(t, err, "wallet is locked")
	})

	t.Run("context cancellation unblocks the call", func(t *testing.T) {
		channel := newLoopback(func(reqType, messageID string) []byte {
			return nil // never answer
		})
		wallet := extensionwallet.NewWallet(channel)
		defer wallet.Close(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := wallet.Accounts(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("stray responses are ignored", func(t *testing.T) {
		channel := newLoopback(func(reqType, messageID string) []byte {
			return respond(messageID, []interface{}{"0xaaaa"})
		})
		wallet := extensionwallet.NewWallet(channel)
		defer wallet.Close(ctx)

		channel.incoming <- respond("unknown-id", "whatever")

		entries, err := wallet.Accounts(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})
}

func TestRegisterSender(t *testing.T) {
	ctx := context.Background()

	var gotType string
	channel := newLoopback(func(reqType, messageID string) []byte {
		gotType = reqType
		return respond(messageID, nil)
	})
	wallet := extensionwallet.NewWallet(channel)
	defer wallet.Close(ctx)

	require.NoError(t, wallet.RegisterSender(ctx, "0xcccc", "carol"))
	require.Equal(t, "registerSender", gotType)
}

package extensionwallet

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/otcdesk/walletd/internal/core/ports"

	log "github.com/sirupsen/logrus"
)

// Wire envelopes of the bridge: one request maps to exactly one response,
// matched by messageId.
type request struct {
	Type      string            `json:"type"`
	Args      []json.RawMessage `json:"args"`
	MessageID string            `json:"messageId"`
}

type response struct {
	MessageID string        `json:"messageId"`
	Response  *responseBody `json:"response"`
}

type responseBody struct {
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

type callResult struct {
	value json.RawMessage
	err   error
}

// Wallet is the extension provider: it owns no key material and forwards
// every operation as a correlated request/response pair over the message
// channel to the external signer.
//
// The supported remote operations are the explicit methods below, there is no
// dynamic dispatch.
type Wallet struct {
	channel ports.MsgChannel

	lock     *sync.Mutex
	inFlight map[string]chan callResult
}

func NewWallet(channel ports.MsgChannel) *Wallet {
	wallet := &Wallet{
		channel:  channel,
		lock:     &sync.Mutex{},
		inFlight: make(map[string]chan callResult),
	}
	go wallet.listen()
	return wallet
}

func (w *Wallet) Type() string {
	return ports.ExtensionProvider
}

// Accounts forwards getAccounts. Remote entries may be bare address strings
// or {address, alias} objects, anything else is dropped from the roster
// rather than failing the whole call.
func (w *Wallet) Accounts(ctx context.Context) ([]ports.AccountEntry, error) {
	value, err := w.call(ctx, "getAccounts")
	if err != nil {
		return nil, err
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(value, &rawEntries); err != nil {
		return nil, fmt.Errorf("failed to parse remote accounts: %w", err)
	}

	entries := make([]ports.AccountEntry, 0, len(rawEntries))
	for _, raw := range rawEntries {
		var address string
		if err := json.Unmarshal(raw, &address); err == nil {
			if len(address) > 0 {
				entries = append(entries, ports.AccountEntry{Address: address})
			}
			continue
		}
		var entry struct {
			Address string `json:"address"`
			Alias   string `json:"alias"`
		}
		if err := json.Unmarshal(raw, &entry); err == nil && len(entry.Address) > 0 {
			entries = append(entries, ports.AccountEntry{
				Address: entry.Address,
				Alias:   entry.Alias,
			})
			continue
		}
		log.Debugf("dropping malformed remote account entry %s", string(raw))
	}
	return entries, nil
}

// RegisterSender forwards registerSender to the external signer.
func (w *Wallet) RegisterSender(ctx context.Context, address, alias string) error {
	_, err := w.call(ctx, "registerSender", address, alias)
	return err
}

func (w *Wallet) Close(ctx context.Context) error {
	return w.channel.Close()
}

func (w *Wallet) call(
	ctx context.Context, method string, args ...interface{},
) (json.RawMessage, error) {
	rawArgs := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		buf, err := json.Marshal(arg)
		if err != nil {
			return nil, err
		}
		rawArgs = append(rawArgs, buf)
	}

	messageID := uuid.NewString()
	msg, err := json.Marshal(request{
		Type:      method,
		Args:      rawArgs,
		MessageID: messageID,
	})
	if err != nil {
		return nil, err
	}

	result := make(chan callResult, 1)
	w.lock.Lock()
	w.inFlight[messageID] = result
	w.lock.Unlock()

	if err := w.channel.Post(ctx, msg); err != nil {
		w.forget(messageID)
		return nil, fmt.Errorf("failed to post %s to extension: %w", method, err)
	}

	select {
	case <-ctx.Done():
		w.forget(messageID)
		return nil, ctx.Err()
	case res := <-result:
		if res.err != nil {
			return nil, res.err
		}
		return res.value, nil
	}
}

// listen dispatches responses to their pending calls until the channel is
// closed. A response with an unknown correlation id is logged and dropped, a
// stray message must not take the session down.
func (w *Wallet) listen() {
	for msg := range w.channel.Incoming() {
		var resp response
		if err := json.Unmarshal(msg, &resp); err != nil || resp.Response == nil {
			continue
		}

		w.lock.Lock()
		pending, ok := w.inFlight[resp.MessageID]
		if ok {
			delete(w.inFlight, resp.MessageID)
		}
		w.lock.Unlock()

		if !ok {
			log.Errorf("no in-flight call for message id %s", resp.MessageID)
			continue
		}

		if len(resp.Response.Error) > 0 {
			pending <- callResult{err: fmt.Errorf("%s", resp.Response.Error)}
			continue
		}
		pending <- callResult{value: resp.Response.Value}
	}
}

func (w *Wallet) forget(messageID string) {
	w.lock.Lock()
	defer w.lock.Unlock()
	delete(w.inFlight, messageID)
}

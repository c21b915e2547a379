package nodeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/otcdesk/walletd/internal/core/ports"
)

const (
	infoEndpoint     = "/info"
	accountsEndpoint = "/accounts"

	requestTimeout = 15 * time.Second
)

type client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a ChainSource talking to the node's HTTP API.
func NewClient(nodeURL string) (ports.ChainSource, error) {
	if len(nodeURL) <= 0 {
		return nil, fmt.Errorf("node URL is required")
	}
	if _, err := url.Parse(nodeURL); err != nil {
		return nil, fmt.Errorf("invalid node URL: %w", err)
	}

	return &client{
		baseURL:    nodeURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *client) GetNetworkID(ctx context.Context) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, infoEndpoint)
	if err != nil {
		return "", err
	}

	var info struct {
		NetworkID string `json:"networkId"`
	}
	if err := c.get(ctx, endpoint, &info); err != nil {
		return "", fmt.Errorf("failed to fetch node info: %w", err)
	}
	if len(info.NetworkID) <= 0 {
		return "", fmt.Errorf("node returned empty network id")
	}
	return info.NetworkID, nil
}

func (c *client) IsAccountInitialized(
	ctx context.Context, address string,
) (bool, error) {
	endpoint, err := url.JoinPath(c.baseURL, accountsEndpoint, address)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to fetch account state: %w", err)
	}
	// nolint:all
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf(
			"unexpected status %d while fetching account state", resp.StatusCode,
		)
	}

	var account struct {
		Initialized bool `json:"initialized"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return false, err
	}
	return account.Initialized, nil
}

func (c *client) get(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	// nolint:all
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

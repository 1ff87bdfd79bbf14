package promotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/adityarahmanda/kopitera-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

var errBaseURLRequired = errors.New("storefront base url is required")

// Catalog fetches the promotions available for a given cart total.
type Catalog interface {
	AvailablePromotions(ctx context.Context, totalPrice int64) ([]Promotion, error)
}

// Client reads the storefront backend's promotion catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds the promotion catalog client.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// AvailablePromotions fetches the catalog scoped to the current total.
// Promotions whose usage cap is already exhausted are dropped while decoding;
// downstream selection logic performs no further exhaustion checks.
func (c *Client) AvailablePromotions(ctx context.Context, totalPrice int64) ([]Promotion, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "promotion client not configured")
	}

	url := fmt.Sprintf("%s/promotions?total=%d", c.baseURL, totalPrice)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build promotions request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute promotions request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "promotions request failed")
	}

	var decoded []Promotion
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode promotions response")
	}

	available := decoded[:0]
	for _, promo := range decoded {
		if promo.Exhausted() {
			continue
		}
		available = append(available, promo)
	}
	return available, nil
}

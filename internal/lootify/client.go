package lootify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LootSpinner/internal/config"
	"LootSpinner/internal/model"
)

// DefaultTimeout is used when the configured API timeout is zero.
const DefaultTimeout = 30 * time.Second

// Client implements API over the Lootify HTTP endpoints.
type Client struct {
	BaseURL     string
	Network     string
	Slug        string
	ServiceCode string
	Referer     string
	Client      *http.Client
}

// NewClient creates a client with optional proxy support.
func NewClient(api config.API, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	timeout := api.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:     strings.TrimRight(api.BaseURL, "/"),
		Network:     api.Network,
		Slug:        api.Slug,
		ServiceCode: api.ServiceCode,
		Referer:     api.Referer,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) Name() string { return "lootify" }

// openRequest is the JSON body of the loot/open endpoint.
type openRequest struct {
	Network     string  `json:"network"`
	Slug        string  `json:"slug"`
	AccessToken string  `json:"access_token"`
	Wallet      string  `json:"wallet"`
	Qnt         int     `json:"qnt"`
	Price       float64 `json:"price"`
}

// OpenBox requests quantity box openings at the given unit price.
func (c *Client) OpenBox(ctx context.Context, token string, wallet model.Wallet, quantity int, price float64) model.SpinOutcome {
	endpoint := fmt.Sprintf("%s/loot/open/%s/%s", c.BaseURL, url.PathEscape(c.Network), url.PathEscape(c.Slug))
	payload, err := json.Marshal(openRequest{
		Network:     c.Network,
		Slug:        c.Slug,
		AccessToken: token,
		Wallet:      string(wallet),
		Qnt:         quantity,
		Price:       price,
	})
	if err != nil {
		return model.SpinFailure(fmt.Sprintf("Request failed: marshal payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.SpinFailure(fmt.Sprintf("Request failed: %v", err))
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[ERROR] spin request: %v", err)
		return model.SpinFailure(fmt.Sprintf("Request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[ERROR] read spin response: %v", err)
		return model.SpinFailure(fmt.Sprintf("Request failed: read body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[ERROR] spin request: status %d, body: %s", resp.StatusCode, string(body))
		if msg := messageOf(body); msg != "" {
			return model.SpinFailure(msg)
		}
		return model.SpinFailure(fmt.Sprintf("Request failed with status code %d", resp.StatusCode))
	}

	if !isJSONArray(body) {
		if msg := messageOf(body); msg != "" {
			return model.SpinFailure(msg)
		}
		return model.SpinFailure("Unknown error format")
	}
	return Normalize(body)
}

// FetchAccount reads the account state for wallet.
func (c *Client) FetchAccount(ctx context.Context, token string, wallet model.Wallet) (*model.AccountSnapshot, error) {
	q := url.Values{}
	q.Set("full", "false")
	q.Set("code", c.ServiceCode)
	endpoint := fmt.Sprintf("%s/account/%s?%s", c.BaseURL, url.PathEscape(string(wallet)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read account body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch account: status %d, body: %s", resp.StatusCode, string(body))
	}
	return ParseAccount(body)
}

// setHeaders mirrors the browser client the upstream expects.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	if c.Referer != "" {
		req.Header.Set("Referer", c.Referer)
	}
	req.Header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// accountBody is the expected JSON shape of the account endpoint.
type accountBody struct {
	Jewels     any `json:"jewels"`
	TotalSpent any `json:"totalSpent"`
	Multiplier any `json:"multiplier"`
	AutoSell   any `json:"autoSell"`
	SeasonInfo *struct {
		Level any `json:"level"`
		XP    any `json:"xp"`
	} `json:"seasonInfo"`
}

// ParseAccount decodes an account response body. The raw body is kept on the
// snapshot for the account log.
func ParseAccount(body []byte) (*model.AccountSnapshot, error) {
	var ab accountBody
	if err := json.Unmarshal(body, &ab); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	snap := &model.AccountSnapshot{
		Jewels:     asString(ab.Jewels),
		TotalSpent: toFloat(ab.TotalSpent),
		Multiplier: toFloat(ab.Multiplier),
		AutoSell:   truthy(ab.AutoSell),
		Raw:        json.RawMessage(body),
	}
	if snap.Multiplier == 0 {
		snap.Multiplier = 1
	}
	snap.SeasonLevel = 1
	if ab.SeasonInfo != nil {
		if lvl := int(toFloat(ab.SeasonInfo.Level)); lvl != 0 {
			snap.SeasonLevel = lvl
		}
		snap.SeasonXP = toFloat(ab.SeasonInfo.XP)
	}
	return snap, nil
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '[' && json.Valid(trimmed)
}

// messageOf extracts the "message" field of an error body, if any.
func messageOf(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return asString(payload.Message)
}

var _ API = (*Client)(nil)

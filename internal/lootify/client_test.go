package lootify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LootSpinner/internal/config"
	"LootSpinner/internal/model"
)

var testWallet = model.Wallet("0x" + strings.Repeat("1", 40))

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.API{
		BaseURL:     srv.URL,
		Network:     "solana",
		Slug:        "monad-box1",
		ServiceCode: "code123",
		Referer:     "https://beta.lootify.xyz/",
		Timeout:     5 * time.Second,
	}, "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestOpenBox_SendsRequestAndNormalizes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/loot/open/solana/monad-box1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "https://beta.lootify.xyz/", r.Header.Get("Referer"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "solana", body["network"])
		assert.Equal(t, "monad-box1", body["slug"])
		assert.Equal(t, "tok", body["access_token"])
		assert.Equal(t, string(testWallet), body["wallet"])
		assert.Equal(t, 5.0, body["qnt"])
		assert.Equal(t, 2.5, body["price"])

		writeJSON(w, http.StatusOK, []map[string]any{
			{"index": 0, "prize": map[string]any{"name": "Gem", "price": 10}, "quickSellPrice": 4},
			{"index": 1, "lootName": "Dust"},
		})
	})

	out := c.OpenBox(context.Background(), "tok", testWallet, 5, 2.5)
	require.True(t, out.Success, out.Message)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Gem", out.Items[0].Name)
	assert.Equal(t, "Dust", out.Items[1].Name)
	assert.NotEmpty(t, out.Raw)
}

func TestOpenBox_FailureMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   string
	}{
		{"object with message", http.StatusOK, map[string]any{"message": "balance too low"}, "balance too low"},
		{"object without message", http.StatusOK, map[string]any{"ok": false}, "Unknown error format"},
		{"error status with message", http.StatusBadRequest, map[string]any{"message": "Not enough balance"}, "Not enough balance"},
		{"error status without message", http.StatusBadGateway, map[string]any{}, "Request failed with status code 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			out := c.OpenBox(context.Background(), "tok", testWallet, 1, 1)
			assert.False(t, out.Success)
			assert.Equal(t, tt.want, out.Message)
			assert.Empty(t, out.Items)
		})
	}
}

func TestOpenBox_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(config.API{BaseURL: url, Network: "solana", Slug: "box", Timeout: time.Second}, "")
	out := c.OpenBox(context.Background(), "tok", testWallet, 1, 1)
	assert.False(t, out.Success)
	assert.True(t, strings.HasPrefix(out.Message, "Request failed: "), out.Message)
}

func TestFetchAccount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/account/"+string(testWallet), r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("full"))
		assert.Equal(t, "code123", r.URL.Query().Get("code"))
		writeJSON(w, http.StatusOK, map[string]any{
			"jewels":     "5000000000000000",
			"totalSpent": 125,
			"multiplier": 2,
			"autoSell":   true,
			"seasonInfo": map[string]any{"level": 3, "xp": 420},
		})
	})

	snap, err := c.FetchAccount(context.Background(), "tok", testWallet)
	require.NoError(t, err)
	assert.Equal(t, "5000000000000000", snap.Jewels)
	assert.Equal(t, "5.00000", model.FormatJewels(snap.Jewels))
	assert.Equal(t, 125.0, snap.TotalSpent)
	assert.Equal(t, 2.0, snap.Multiplier)
	assert.True(t, snap.AutoSell)
	assert.Equal(t, 3, snap.SeasonLevel)
	assert.Equal(t, 420.0, snap.SeasonXP)
	assert.NotEmpty(t, snap.Raw)
}

func TestFetchAccount_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})
	snap, err := c.FetchAccount(context.Background(), "tok", testWallet)
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestParseAccount_Defaults(t *testing.T) {
	snap, err := ParseAccount([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "", snap.Jewels)
	assert.Equal(t, "0", model.FormatJewels(snap.Jewels))
	assert.Equal(t, 1.0, snap.Multiplier)
	assert.Equal(t, 1, snap.SeasonLevel)
	assert.Equal(t, 0.0, snap.SeasonXP)
	assert.False(t, snap.AutoSell)
}

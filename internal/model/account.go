package model

import (
	"encoding/json"
	"math/big"
	"strings"
)

// jewelScale is the fixed-point scale of the jewels currency (10^15).
var jewelScale = new(big.Float).SetFloat64(1e15)

// AccountSnapshot is the subset of the account endpoint used for display.
type AccountSnapshot struct {
	Jewels      string
	TotalSpent  float64
	Multiplier  float64
	AutoSell    bool
	SeasonLevel int
	SeasonXP    float64
	Raw         json.RawMessage
}

// FormatJewels renders a string-encoded jewels amount with 5 decimals.
func FormatJewels(jewels string) string {
	jewels = strings.TrimSpace(jewels)
	if jewels == "" {
		return "0"
	}
	f, ok := new(big.Float).SetPrec(256).SetString(jewels)
	if !ok {
		return "NaN"
	}
	return new(big.Float).SetPrec(256).Quo(f, jewelScale).Text('f', 5)
}

package model

import (
	"fmt"
	"strings"
)

// Wallet is an EVM-style wallet address as accepted by the Lootify API.
type Wallet string

// WalletPrefix and MinWalletLength describe the accepted address shape.
const (
	WalletPrefix    = "0x"
	MinWalletLength = 40
)

// ValidateWallet reports whether s has the accepted wallet address shape.
func ValidateWallet(s string) error {
	if !strings.HasPrefix(s, WalletPrefix) {
		return fmt.Errorf("wallet must start with %q", WalletPrefix)
	}
	if len(s) < MinWalletLength {
		return fmt.Errorf("wallet must be at least %d characters, got %d", MinWalletLength, len(s))
	}
	return nil
}

func (w Wallet) String() string { return string(w) }

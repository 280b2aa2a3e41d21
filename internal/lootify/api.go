package lootify

import (
	"context"

	"LootSpinner/internal/model"
)

// API is the subset of the Lootify service the bot talks to.
// OpenBox never returns an error: expected failures are carried in the outcome.
type API interface {
	OpenBox(ctx context.Context, token string, wallet model.Wallet, quantity int, price float64) model.SpinOutcome
	FetchAccount(ctx context.Context, token string, wallet model.Wallet) (*model.AccountSnapshot, error)
	Name() string
}

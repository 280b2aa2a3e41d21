package lootify

import (
	"context"
	"errors"
	"sync"

	"LootSpinner/internal/model"
)

// MockAPI replays scripted outcomes for development and testing.
// Once Outcomes is exhausted the last entry repeats.
type MockAPI struct {
	Outcomes []model.SpinOutcome
	Account  *model.AccountSnapshot

	mu           sync.Mutex
	Spins        int
	AccountCalls int
}

func (m *MockAPI) Name() string { return "mock" }

func (m *MockAPI) OpenBox(_ context.Context, _ string, _ model.Wallet, _ int, _ float64) model.SpinOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Spins++
	if len(m.Outcomes) == 0 {
		return model.SpinFailure("Unknown error format")
	}
	i := m.Spins - 1
	if i >= len(m.Outcomes) {
		i = len(m.Outcomes) - 1
	}
	return m.Outcomes[i]
}

func (m *MockAPI) FetchAccount(_ context.Context, _ string, _ model.Wallet) (*model.AccountSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AccountCalls++
	if m.Account == nil {
		return nil, errors.New("mock: no account configured")
	}
	return m.Account, nil
}

var _ API = (*MockAPI)(nil)

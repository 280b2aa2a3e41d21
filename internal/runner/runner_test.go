package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LootSpinner/internal/config"
	"LootSpinner/internal/lootify"
	"LootSpinner/internal/model"
	"LootSpinner/internal/recorder"
)

const interval = 100 * time.Millisecond

var testWallet = model.Wallet("0x" + strings.Repeat("f", 40))

// sleepLog records every requested wait without sleeping.
type sleepLog struct {
	mu     sync.Mutex
	waits  []time.Duration
	failAt int // 1-based wait index that returns an error; 0 disables
}

func (s *sleepLog) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	if s.failAt > 0 && len(s.waits) == s.failAt {
		return context.Canceled
	}
	return nil
}

func success(n int) model.SpinOutcome {
	entries := make([]map[string]any, n)
	for i := range entries {
		entries[i] = map[string]any{
			"index":          i,
			"prize":          map[string]any{"name": "Gem", "price": 3},
			"quickSellPrice": 1,
			"highlight":      i%2 == 1,
		}
	}
	raw, _ := json.Marshal(entries)
	return lootify.Normalize(raw)
}

func newTestRunner(api lootify.API, rec recorder.Recorder, maxSpins int, sl *sleepLog) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	params := config.Run{
		Interval:     interval,
		MaxSpins:     maxSpins,
		Quantity:     5,
		Price:        5,
		AccountEvery: 5,
		LogResults:   true,
	}
	r := New(api, rec, params, testWallet, "tok", &out)
	r.Sleep = sl.sleep
	r.Now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local) }
	r.NewID = func() string { return "run-test" }
	return r, &out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want FailureKind
	}{
		{"Request failed: timeout", FailureTransport},
		{"Request failed with status code 502", FailureTransport},
		{"balance too low", FailureBalance},
		{"Insufficient BALANCE", FailureBalance},
		{"Request failed: low balance", FailureBalance},
		{"request failed", FailureGeneric},
		{"Unknown error format", FailureGeneric},
		{"", FailureGeneric},
	}
	for _, tt := range tests {
		if got := Classify(tt.msg); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

func TestRun_StopsOnBalanceExhaustion(t *testing.T) {
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{
		success(2),
		model.SpinFailure("Unknown error format"),
		model.SpinFailure("balance too low"),
		success(5),
	}}
	sl := &sleepLog{}
	r, out := newTestRunner(api, recorder.NewNoopRecorder(), 10, sl)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Stats.SpinCount)
	assert.Equal(t, 3, api.Spins)
	assert.Equal(t, 1, rep.Stats.SuccessfulSpins)
	assert.Equal(t, model.StopBalance, rep.StopReason)
	assert.Equal(t, []time.Duration{interval, interval}, sl.waits, "no wait after the balance failure")
	assert.Contains(t, out.String(), "Insufficient balance detected. Stopping bot.")
	assert.Equal(t, StateDone, r.State())
}

func TestRun_TransportFailureDoublesWait(t *testing.T) {
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{
		model.SpinFailure("Request failed: timeout"),
		success(1),
		model.SpinFailure("something else"),
		success(1),
	}}
	sl := &sleepLog{}
	r, out := newTestRunner(api, recorder.NewNoopRecorder(), 4, sl)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Stats.SpinCount)
	assert.Equal(t, []time.Duration{2 * interval, interval, interval}, sl.waits)
	assert.Contains(t, out.String(), "Network issue detected.")
}

func TestRun_StatisticsInvariants(t *testing.T) {
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{
		success(3), model.SpinFailure("nope"), success(5), success(0), success(2),
	}}
	sl := &sleepLog{}
	r, _ := newTestRunner(api, recorder.NewNoopRecorder(), 5, sl)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	s := rep.Stats

	assert.Equal(t, 5, s.SpinCount)
	assert.Equal(t, 4, s.SuccessfulSpins)
	assert.LessOrEqual(t, s.SuccessfulSpins, s.SpinCount)
	assert.Equal(t, 10, s.TotalItems)

	sum := 0
	for _, n := range s.RarityCount {
		sum += n
	}
	assert.Equal(t, s.TotalItems, sum)
	assert.Equal(t, float64(s.TotalItems)*5, s.TotalSpent)
	assert.Equal(t, float64(s.TotalItems), s.TotalEarned)
	assert.Equal(t, model.StopMaxSpins, rep.StopReason)
	assert.Len(t, sl.waits, 4, "no wait after the final attempt")
}

func TestRun_AccountPollingCadence(t *testing.T) {
	api := &lootify.MockAPI{
		Outcomes: []model.SpinOutcome{success(1)},
		Account:  &model.AccountSnapshot{Jewels: "5000000000000000", Multiplier: 1, SeasonLevel: 2, Raw: json.RawMessage(`{"jewels":"5000000000000000"}`)},
	}
	r, out := newTestRunner(api, recorder.NewNoopRecorder(), 10, &sleepLog{})

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	// initial + attempts 1, 5, 10 + final
	assert.Equal(t, 5, api.AccountCalls)
	assert.Equal(t, 3, strings.Count(out.String(), "Account update:"))
	require.NotNil(t, rep.FinalAccount)
	assert.Contains(t, out.String(), "Final jewels balance: 5.00000")
}

func TestRun_AccountUnavailableContinues(t *testing.T) {
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{success(1)}}
	r, out := newTestRunner(api, recorder.NewNoopRecorder(), 2, &sleepLog{})

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Stats.SuccessfulSpins)
	assert.Nil(t, rep.FinalAccount)
	assert.Contains(t, out.String(), "Could not retrieve initial account info. Continuing anyway...")
}

func TestRun_CancelledWaitDrains(t *testing.T) {
	dir := t.TempDir()
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{success(1)}}
	sl := &sleepLog{failAt: 2}
	rec := recorder.NewFileRecorder(dir, false)
	r, _ := newTestRunner(api, rec, 10, sl)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, rec.Close())
	assert.Equal(t, model.StopCancelled, rep.StopReason)
	assert.Equal(t, 2, rep.Stats.SpinCount)

	raw, err := os.ReadFile(filepath.Join(dir, recorder.RawSpinsFile))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "{}]\n"))
}

func TestRun_TwoSpinLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	api := &lootify.MockAPI{
		Outcomes: []model.SpinOutcome{success(2), success(3)},
		Account:  &model.AccountSnapshot{Raw: json.RawMessage(`{"jewels":"1"}`)},
	}
	rec := recorder.NewFileRecorder(dir, false)
	r, _ := newTestRunner(api, rec, 2, &sleepLog{})

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	raw, err := os.ReadFile(filepath.Join(dir, recorder.RawSpinsFile))
	require.NoError(t, err)
	body := strings.TrimSuffix(string(raw), "{}]\n")
	body = strings.TrimSuffix(strings.TrimSpace(body), ",") + "]"
	var spins [][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &spins))
	require.Len(t, spins, 2)
	assert.Len(t, spins[0], 2)
	assert.Len(t, spins[1], 3)

	// initial + poll at attempt 1; the final check comes after the sentinel.
	accounts, err := os.ReadFile(filepath.Join(dir, recorder.AccountsFile))
	require.NoError(t, err)
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(accounts, &entries))
	assert.Len(t, entries, 3)

	summary, err := os.ReadFile(filepath.Join(dir, recorder.SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(summary), "Spin #"))
	assert.Contains(t, string(summary), "Total items received: 5")
}

type brokenRecorder struct{ *recorder.NoopRecorder }

func (brokenRecorder) RecordSpin(_ *recorder.SpinEvent) error { return errors.New("disk full") }

func TestRun_RecorderErrorPropagates(t *testing.T) {
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{success(1)}}
	r, _ := newTestRunner(api, brokenRecorder{recorder.NewNoopRecorder()}, 3, &sleepLog{})

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, api.Spins)
}

type captureSender struct {
	text string
}

func (c *captureSender) SendWithRetry(_ context.Context, text string, _ int) error {
	c.text = text
	return nil
}

func TestRun_SendsReport(t *testing.T) {
	api := &lootify.MockAPI{Outcomes: []model.SpinOutcome{success(1)}}
	r, _ := newTestRunner(api, recorder.NewNoopRecorder(), 1, &sleepLog{})
	cs := &captureSender{}
	r.Sender = cs

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cs.text, "Spin Bot Report")
	assert.Contains(t, cs.text, string(model.StopMaxSpins))
}

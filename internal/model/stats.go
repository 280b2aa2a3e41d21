package model

import (
	"strconv"
	"strings"
)

// RunStats accumulates the counters of a single run.
// It is owned by one runner and is not safe for concurrent use.
type RunStats struct {
	SpinCount       int
	SuccessfulSpins int
	TotalItems      int
	RarityCount     map[Rarity]int
	TotalSpent      float64
	TotalEarned     float64
}

// NewRunStats returns zeroed stats with every tier present in the histogram.
func NewRunStats() *RunStats {
	rc := make(map[Rarity]int, len(Rarities))
	for _, r := range Rarities {
		rc[r] = 0
	}
	return &RunStats{RarityCount: rc}
}

// Attempt counts one spin attempt and returns the new attempt number.
func (s *RunStats) Attempt() int {
	s.SpinCount++
	return s.SpinCount
}

// RecordSuccess folds the items of a successful spin into the totals.
// Each item costs unitPrice and earns its quick-sell price.
func (s *RunStats) RecordSuccess(items []SpinItem, unitPrice float64) {
	s.SuccessfulSpins++
	for _, it := range items {
		s.TotalItems++
		if it.Rarity != "" {
			s.RarityCount[it.Rarity]++
		}
		s.TotalSpent += unitPrice
		s.TotalEarned += it.QuickSellPrice
	}
}

// Failed returns the number of attempts that did not succeed.
func (s *RunStats) Failed() int { return s.SpinCount - s.SuccessfulSpins }

// Profit is the auto-sell income minus spend.
func (s *RunStats) Profit() float64 { return s.TotalEarned - s.TotalSpent }

// RarityBreakdown renders the histogram as a JSON object in tier order.
func (s *RunStats) RarityBreakdown() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, r := range Rarities {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(string(r)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(s.RarityCount[r]))
	}
	b.WriteByte('}')
	return b.String()
}

// FormatNumber prints a float the way a JavaScript console would: no
// trailing zeros and no exponent for ordinary magnitudes.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

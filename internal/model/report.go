package model

import "time"

// DisplayTimeLayout renders timestamps in logs and console output.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// StopReason explains why the spin loop ended.
type StopReason string

const (
	StopMaxSpins  StopReason = "MAX_SPINS"
	StopBalance   StopReason = "BALANCE_EXHAUSTED"
	StopCancelled StopReason = "CANCELLED"
)

// RunInfo identifies a run for the recorders.
type RunInfo struct {
	ID        string
	Wallet    Wallet
	StartedAt time.Time
}

// Report is the finalized outcome of a run.
type Report struct {
	RunInfo
	Stats        RunStats
	FinishedAt   time.Time
	StopReason   StopReason
	FinalAccount *AccountSnapshot
}

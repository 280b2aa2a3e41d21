package recorder

import (
	"time"

	"LootSpinner/internal/model"
)

// AccountPhase tells when in a run an account snapshot was taken.
type AccountPhase string

const (
	PhaseInitial AccountPhase = "INITIAL"
	PhasePoll    AccountPhase = "POLL"
	PhaseFinal   AccountPhase = "FINAL"
)

// SpinEvent holds the items of one successful spin.
type SpinEvent struct {
	Attempt int
	At      time.Time
	Items   []model.SpinItem
}

// AccountEvent holds one account snapshot.
type AccountEvent struct {
	Attempt  int // 0 for the initial and final snapshots
	Phase    AccountPhase
	At       time.Time
	Snapshot *model.AccountSnapshot
}

// Recorder persists the results of a run.
//
// Calls arrive in run order: Start, then any number of RecordRawSpin,
// RecordSpin and RecordAccount, then Finish, RecordReport and Close.
// Finish terminates the streaming logs; accounts recorded after it are not
// added to them.
type Recorder interface {
	Start(info *model.RunInfo) error
	RecordRawSpin(raw []byte) error
	RecordSpin(evt *SpinEvent) error
	RecordAccount(evt *AccountEvent) error
	Finish() error
	RecordReport(rep *model.Report) error
	Close() error
}

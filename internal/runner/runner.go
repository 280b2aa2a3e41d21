// Package runner drives one spin run from the first account check to the
// final report.
package runner

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"LootSpinner/internal/config"
	"LootSpinner/internal/lootify"
	"LootSpinner/internal/model"
	"LootSpinner/internal/notifier"
	"LootSpinner/internal/recorder"
)

// State is the phase of a run.
type State string

const (
	StateInit     State = "INIT"
	StateLooping  State = "LOOPING"
	StateDraining State = "DRAINING"
	StateDone     State = "DONE"
)

// ReportSender pushes the final report somewhere outside the console.
type ReportSender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Runner owns the statistics and recorder of a single run.
type Runner struct {
	API      lootify.API
	Recorder recorder.Recorder
	Sender   ReportSender // optional
	Params   config.Run
	Wallet   model.Wallet
	Token    string
	Out      io.Writer

	// Sleep waits between attempts; it must return early with ctx.Err()
	// when ctx is cancelled.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
	NewID func() string

	state State
	stats *model.RunStats
}

// New creates a Runner with real clock and sleep.
func New(api lootify.API, rec recorder.Recorder, params config.Run, wallet model.Wallet, token string, out io.Writer) *Runner {
	return &Runner{
		API:      api,
		Recorder: rec,
		Params:   params,
		Wallet:   wallet,
		Token:    token,
		Out:      out,
		Sleep:    SleepContext,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// State returns the current phase.
func (r *Runner) State() State { return r.state }

func (r *Runner) setState(s State) {
	r.state = s
	log.Printf("[INFO] run state: %s", s)
}

// Run executes the spin loop and returns the final report. Recorder failures
// abort the run and are returned; upstream failures never are.
func (r *Runner) Run(ctx context.Context) (*model.Report, error) {
	r.setState(StateInit)
	r.stats = model.NewRunStats()
	p := r.Params

	info := &model.RunInfo{ID: r.NewID(), Wallet: r.Wallet, StartedAt: r.Now()}
	if err := r.Recorder.Start(info); err != nil {
		return nil, fmt.Errorf("start recorder: %w", err)
	}
	fmt.Fprintf(r.Out, "Configuration: %d boxes per request, %d max total spin attempts\n", p.Quantity, p.MaxSpins)

	initial, err := r.checkAccount(ctx, recorder.PhaseInitial, 0)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(r.Out, notifier.FormatInitialAccount(r.Wallet, initial))

	r.setState(StateLooping)
	stop, err := r.loop(ctx)
	if err != nil {
		return nil, err
	}
	return r.drain(ctx, info, stop)
}

func (r *Runner) loop(ctx context.Context) (model.StopReason, error) {
	p := r.Params
	for r.stats.SpinCount < p.MaxSpins {
		if ctx.Err() != nil {
			return model.StopCancelled, nil
		}
		n := r.stats.Attempt()
		fmt.Fprintf(r.Out, "\n[Spin #%d] Attempting to spin box...\n", n)

		out := r.API.OpenBox(ctx, r.Token, r.Wallet, p.Quantity, p.Price)
		wait := p.Interval
		if out.Success {
			if err := r.recordSuccess(n, out); err != nil {
				return "", err
			}
		} else {
			msg := out.Message
			if msg == "" {
				msg = "Unknown error"
			}
			fmt.Fprintf(r.Out, "❌ Spin failed: %s\n", msg)

			switch Classify(out.Message) {
			case FailureBalance:
				fmt.Fprintln(r.Out, "Insufficient balance detected. Stopping bot.")
				return model.StopBalance, nil
			case FailureTransport:
				fmt.Fprintln(r.Out, "Network issue detected. Waiting longer before next attempt...")
				wait = 2 * p.Interval
			}
		}

		if n == 1 || n%p.AccountEvery == 0 {
			snap, err := r.checkAccount(ctx, recorder.PhasePoll, n)
			if err != nil {
				return "", err
			}
			if snap != nil {
				fmt.Fprint(r.Out, notifier.FormatAccountUpdate(snap))
			}
		}

		if n >= p.MaxSpins {
			break
		}
		fmt.Fprintf(r.Out, "Waiting %g seconds before next spin...\n", wait.Seconds())
		if err := r.Sleep(ctx, wait); err != nil {
			log.Printf("[INFO] wait interrupted: %v", err)
			return model.StopCancelled, nil
		}
	}
	return model.StopMaxSpins, nil
}

func (r *Runner) recordSuccess(n int, out model.SpinOutcome) error {
	r.stats.RecordSuccess(out.Items, r.Params.Price)
	fmt.Fprint(r.Out, notifier.FormatItems(out.Items))

	if len(out.Raw) > 0 {
		if err := r.Recorder.RecordRawSpin(out.Raw); err != nil {
			return fmt.Errorf("record raw spin: %w", err)
		}
	}
	if err := r.Recorder.RecordSpin(&recorder.SpinEvent{Attempt: n, At: r.Now(), Items: out.Items}); err != nil {
		return fmt.Errorf("record spin: %w", err)
	}
	return nil
}

func (r *Runner) drain(ctx context.Context, info *model.RunInfo, stop model.StopReason) (*model.Report, error) {
	r.setState(StateDraining)
	// The final account check and report push still run after a cancel.
	ctx = context.WithoutCancel(ctx)

	if err := r.Recorder.Finish(); err != nil {
		return nil, fmt.Errorf("finish logs: %w", err)
	}

	rep := &model.Report{RunInfo: *info, Stats: *r.stats, StopReason: stop}
	fmt.Fprint(r.Out, notifier.FormatReport(rep))

	final, err := r.checkAccount(ctx, recorder.PhaseFinal, 0)
	if err != nil {
		return nil, err
	}
	rep.FinalAccount = final
	fmt.Fprint(r.Out, notifier.FormatFinalAccount(final))

	rep.FinishedAt = r.Now()
	if err := r.Recorder.RecordReport(rep); err != nil {
		return nil, fmt.Errorf("record report: %w", err)
	}

	if r.Sender != nil {
		if err := r.Sender.SendWithRetry(ctx, notifier.FormatTelegramReport(rep), 3); err != nil {
			log.Printf("[ERROR] send report: %v", err)
		}
	}

	fmt.Fprintln(r.Out, "Bot completed its run.")
	r.setState(StateDone)
	return rep, nil
}

// checkAccount fetches a snapshot best-effort. A failed fetch is logged and
// yields nil; only a recorder failure is returned.
func (r *Runner) checkAccount(ctx context.Context, phase recorder.AccountPhase, attempt int) (*model.AccountSnapshot, error) {
	snap, err := r.API.FetchAccount(ctx, r.Token, r.Wallet)
	if err != nil {
		log.Printf("[WARN] account check (%s): %v", phase, err)
		return nil, nil
	}
	if err := r.Recorder.RecordAccount(&recorder.AccountEvent{
		Attempt:  attempt,
		Phase:    phase,
		At:       r.Now(),
		Snapshot: snap,
	}); err != nil {
		return nil, fmt.Errorf("record account: %w", err)
	}
	return snap, nil
}

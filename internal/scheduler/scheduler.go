package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler starts a fresh run on every cron tick. A tick that fires while
// the previous run is still going is skipped, so runs never overlap.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Ctx  context.Context
}

// NewScheduler creates a new Scheduler with a seconds-first cron parser.
func NewScheduler(ctx context.Context, job Job) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Job: job,
		Ctx: ctx,
	}
}

// Register adds the run job under the cron expression expr.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.RunNow); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the job immediately unless the context is already done.
func (s *Scheduler) RunNow() {
	if s.Ctx.Err() != nil {
		return
	}
	log.Println("[INFO] running scheduled spin run")
	s.Job(s.Ctx)
}

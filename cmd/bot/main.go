package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"LootSpinner/internal/config"
	"LootSpinner/internal/input"
	"LootSpinner/internal/lootify"
	"LootSpinner/internal/model"
	"LootSpinner/internal/notifier"
	"LootSpinner/internal/recorder"
	"LootSpinner/internal/runner"
	"LootSpinner/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	errLog := filepath.Join(cfg.Logs.Dir, recorder.ErrorLogFile)
	defer func() {
		if p := recover(); p != nil {
			reportFatal(errLog, fmt.Errorf("panic: %v", p), debug.Stack())
			os.Exit(1)
		}
	}()

	if err := run(cfg); err != nil {
		reportFatal(errLog, err, debug.Stack())
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	fmt.Print(notifier.Banner)
	fmt.Println("Starting Auto Spin Bot...")

	wallet := model.Wallet(cfg.Wallet)
	if wallet == "" {
		w, err := input.PromptWallet(os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("prompt wallet: %w", err)
		}
		wallet = w
	}
	fmt.Printf("Wallet in use: %s\n", wallet)

	token, err := input.LoadToken(cfg.TokenPath)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if token == "" {
		fmt.Println("Invalid token. Please check token.txt file.")
		return nil
	}
	fmt.Println("Token loaded successfully.")

	api := lootify.NewClient(cfg.API, cfg.Proxy)
	log.Printf("[INFO] api client: %s (%s)", api.Name(), cfg.API.BaseURL)

	var sender runner.ReportSender
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		sender = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Println("[INFO] telegram report enabled")
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Schedule.Cron == "" {
		return runOnce(ctx, cfg, api, sender, wallet, token, cfg.Logs.Dir)
	}

	errLog := filepath.Join(cfg.Logs.Dir, recorder.ErrorLogFile)
	sched := scheduler.NewScheduler(ctx, func(ctx context.Context) {
		dir := filepath.Join(cfg.Logs.Dir, time.Now().Format("20060102-150405"))
		if err := runOnce(ctx, cfg, api, sender, wallet, token, dir); err != nil {
			reportFatal(errLog, err, debug.Stack())
		}
	})
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	log.Printf("[INFO] waiting for schedule %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)

	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	return nil
}

// runOnce executes one run with its own recorders.
func runOnce(ctx context.Context, cfg *config.Config, api lootify.API, sender runner.ReportSender, wallet model.Wallet, token, logDir string) (err error) {
	rec := buildRecorder(cfg, logDir)
	defer func() {
		if cerr := rec.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close recorder: %w", cerr))
		}
	}()

	r := runner.New(api, rec, cfg.Run, wallet, token, os.Stdout)
	r.Sender = sender
	if _, err := r.Run(ctx); err != nil {
		// Terminate the streaming logs even when the run aborted.
		if ferr := rec.Finish(); ferr != nil {
			log.Printf("[WARN] finish logs after error: %v", ferr)
		}
		return err
	}
	return nil
}

func buildRecorder(cfg *config.Config, dir string) recorder.Recorder {
	var recs recorder.Multi
	if cfg.Run.LogResults {
		recs = append(recs, recorder.NewFileRecorder(dir, cfg.Logs.Format == config.LogFormatNDJSON))
	}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, skipping: %v", err)
		} else {
			recs = append(recs, sr)
		}
	}
	if len(recs) == 0 {
		return recorder.NewNoopRecorder()
	}
	return recs
}

func reportFatal(path string, err error, trace []byte) {
	log.Printf("[ERROR] fatal error in bot execution: %v", err)
	if werr := recorder.AppendErrorLog(path, time.Now(), err, trace); werr != nil {
		log.Printf("[ERROR] write error log: %v", werr)
	}
}

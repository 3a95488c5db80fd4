package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"PoolWarden/internal/chain"
	"PoolWarden/internal/config"
	"PoolWarden/internal/multisig"
	"PoolWarden/internal/notifier"
	"PoolWarden/internal/pool"
	"PoolWarden/internal/recorder"
	"PoolWarden/internal/rotation"
	"PoolWarden/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PoolWarden starting...")

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

	// Init chain client
	var client chain.Client
	if cfg.Node.BaseURL != "" {
		client = chain.NewNodeClient(cfg.Node.BaseURL, cfg.Node.Token, cfg.Proxy)
	} else {
		client = chain.NewMockClient()
	}
	log.Printf("[INFO] chain client: %s", client.Name())

	// Init threshold policy
	policy, err := multisig.NewPolicy(cfg.Pool.Signatories, cfg.Pool.Threshold)
	if err != nil {
		log.Fatalf("[FATAL] init threshold policy: %v", err)
	}

	// Init pool manager
	pm, err := pool.NewManager(pool.Settings{
		ContributionDay:    cfg.Pool.ContributionDay,
		PayoutDay:          cfg.Pool.PayoutDay,
		ContributionAmount: cfg.Pool.ContributionAmount,
		PayoutFraction:     cfg.PayoutFraction(),
		SwapRate:           cfg.SwapRate(),
		FeeDivisor:         cfg.Pool.FeeDivisor,
		ConfirmationRounds: cfg.Pool.ConfirmationRounds,
	}, client, policy, rotation.NewSelector(nil), cfg.Pool.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init pool manager: %v", err)
	}
	log.Printf("[INFO] pool control address: %s", pm.PoolAddress())

	// Init Telegram notifier
	tn := notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wallet daemon holds the keys; the pool only moves signature blobs.
	wallet := chain.NewWalletClient(cfg.Node.WalletURL, cfg.Node.Token)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, pm, tn, rec, wallet, wallet)
	if err := sched.RegisterAll(cfg.Pool.ContributionDay, cfg.Pool.PayoutDay, cfg.Schedule.CycleHour); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: walk future cycles immediately on start
	if v := os.Getenv("SIMULATE_MONTHS"); v != "" {
		if months, err := strconv.Atoi(v); err == nil && months > 0 {
			log.Printf("[INFO] SIMULATE_MONTHS enabled, walking %d months", months)
			go sched.Simulate(time.Now(), months)
		}
	}

	log.Println("[INFO] PoolWarden is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] PoolWarden stopped")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/wfhbot/internal/classify"
	"github.com/user/wfhbot/internal/counter"
	"github.com/user/wfhbot/internal/gateway"
	"github.com/user/wfhbot/internal/scheduler"
	slacksession "github.com/user/wfhbot/internal/session/slack"
	telegramsession "github.com/user/wfhbot/internal/session/telegram"
	"github.com/user/wfhbot/internal/store"
	"github.com/user/wfhbot/internal/types"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wfhbot daemon",
	RunE:  runServe,
}

// platform bundles one chat connection with its own classifier and gateway.
// Each platform resolves its own bot identity, so the pipeline is built per
// connection; they all share the counter store.
type platform struct {
	name    string
	session types.Session
	service *counter.Service
	gw      *gateway.Gateway
	start   func(context.Context, gateway.Handler)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open counter store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var platforms []*platform

	if cfg.Slack.Token != "" {
		adapter, err := slacksession.New(cfg.Slack.Token, cfg.BotName)
		if err != nil {
			return fmt.Errorf("create slack session: %w", err)
		}
		platforms = append(platforms, &platform{name: "slack", session: adapter, start: adapter.Start})
	}

	if cfg.Telegram.Token != "" {
		adapter, err := telegramsession.New(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("create telegram session: %w", err)
		}
		platforms = append(platforms, &platform{name: "telegram", session: adapter, start: adapter.Start})
	}

	if len(platforms) == 0 {
		return fmt.Errorf("no chat platform configured (set BOT_API_KEY or TELEGRAM_BOT_TOKEN)")
	}

	for _, p := range platforms {
		p.service = counter.New(st, p.session, cfg.LeaderboardLimit, cfg.AnnounceChannel)
		classifier := classify.Classifier{
			BotID:   p.session.Self().ID,
			BotName: cfg.BotName,
			Trigger: cfg.Trigger,
		}
		p.gw = gateway.New(classifier, p.service, int64(cfg.MaxConcurrent))
		p.gw.Start(ctx)
		defer p.gw.Stop()
	}

	// First-run check runs through the primary platform before any event is
	// consumed. A failure here is logged, not fatal: the store stays usable
	// for subsequent events.
	primary := platforms[0]
	if err := primary.service.Bootstrap(ctx); err != nil {
		slog.Error("bootstrap failed", "error", err)
	}

	for _, p := range platforms {
		go p.start(ctx, p.gw.HandleInbound)
		slog.Info("session adapter started", "platform", p.name)
	}

	if cfg.Digest.Schedule != "" && cfg.Digest.Channel != "" {
		sched := scheduler.New(st, cfg.Digest.Schedule, cfg.Digest.Channel,
			cfg.LeaderboardLimit, primary.session.PostMessage)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("start digest scheduler: %w", err)
		}
		defer sched.Stop()
	}

	slog.Info("wfhbot started",
		"db_path", cfg.DBPath,
		"bot_name", cfg.BotName,
		"trigger", cfg.Trigger,
		"leaderboard_limit", cfg.LeaderboardLimit,
		"max_concurrent", cfg.MaxConcurrent,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	return nil
}

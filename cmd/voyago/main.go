package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arielhakim/voyago/pkg/errorsx"
	"github.com/arielhakim/voyago/pkg/logging"
	"github.com/arielhakim/voyago/pkg/runner"
	"github.com/arielhakim/voyago/pkg/transports/httpchat"
	"github.com/arielhakim/voyago/pkg/voyago"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env vars always apply)")
	prompt := flag.String("prompt", "Plan me a day trip", "prompt for a one-shot run")
	serve := flag.Bool("serve", false, "serve the agent over HTTP instead of a one-shot run")
	flag.Parse()

	cfg, err := voyago.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	logger := logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)

	engine, err := voyago.NewEngine(voyago.EngineOptions{Config: cfg})
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		transport := httpchat.New(cfg.Server.Addr, engine.NewSession)
		if err := runner.New(transport).Run(ctx); err != nil {
			fatal(err)
		}
		return
	}

	sess := engine.NewSession()
	text, err := sess.Run(ctx, *prompt)
	if err != nil {
		fatal(err)
	}
	fmt.Println(text)
}

func fatal(err error) {
	slog.Error("voyago_fatal", "reason_code", string(errorsx.Reason(err)), "error", err)
	os.Exit(1)
}

// Package main runs the interactive credential manager shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/client/gateway"
	"github.com/atinyakov/credkeeper/internal/client/orchestrator"
	"github.com/atinyakov/credkeeper/internal/client/prompt"
	"github.com/atinyakov/credkeeper/internal/client/state"
	"github.com/atinyakov/credkeeper/internal/config"
	"github.com/atinyakov/credkeeper/internal/logger"
)

var (
	version   string
	buildDate string
)

// main parses flags, wires the gateway, state and orchestrator, and runs
// the shell until exit or end of input.
func main() {
	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if options.ShowVersion {
		fmt.Printf("Credkeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	client, err := gateway.NewHTTPClient(options.CAFile)
	if err != nil {
		log.Log.Fatal("cannot build HTTP client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gw := gateway.New(options.URL, client, log.Log)
	orch := orchestrator.New(gw, state.New(), log.Log)
	sh := newShell(orch, prompt.New(os.Stdin, os.Stdout), os.Stdout)
	sh.run(ctx)
}

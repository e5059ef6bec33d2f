// Command rivulet runs the streaming demonstration scenarios against a
// hosted chat-completion API.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nfujita/rivulet/config"
	"github.com/nfujita/rivulet/console"
	"github.com/nfujita/rivulet/scenario"

	// Register the streaming providers.
	_ "github.com/nfujita/rivulet/anthropic"
	_ "github.com/nfujita/rivulet/gemini"
	_ "github.com/nfujita/rivulet/openai"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	log := logrus.New()

	cfg, err := config.Load("")
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// A missing credential is the one process-fatal failure.
	if err := cfg.CheckCredential(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := console.New(os.Stdout)
	out.Banner("Rivulet Streaming Demo",
		"Streaming chat completions, function calling, and live statistics")

	scenarios := scenario.Builtin()
	if cfg.ScenarioDir != "" {
		extra, err := scenario.Discover(cfg.ScenarioDir)
		if err != nil {
			log.WithError(err).Fatal("loading scenario directory")
		}
		scenarios = append(scenarios, extra...)
	}

	runner := scenario.NewRunner(out, log, cfg.Provider, cfg.Model)
	failed := runner.Run(ctx, scenarios)

	if failed > 0 {
		out.Println("Run complete with reported errors; see above.")
		stop()
		os.Exit(1)
	}
	out.Banner("All demos completed!", "")
}

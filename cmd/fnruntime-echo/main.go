// Command fnruntime-echo is a minimal bootstrap binary: it wires
// configuration, logging, and a trivial string-echo handler into a running
// Lifecycle, so the module is runnable end-to-end without a real cloud
// function container.
package main

import (
	"context"
	"os"

	"github.com/dmitrymomot/fnruntime/agent"
	"github.com/dmitrymomot/fnruntime/config"
	"github.com/dmitrymomot/fnruntime/handler"
	"github.com/dmitrymomot/fnruntime/invocation"
	"github.com/dmitrymomot/fnruntime/logger"
)

func main() {
	// No signal.NotifyContext here: Lifecycle's own Terminator traps the
	// stop signal and bounds only the idle next() wait with it (see
	// Runner.next / Terminator.WatchContext). A context cancelled by an
	// unrelated outer signal handler would otherwise abort in-flight
	// outcome posts too, not just the idle wait.
	ctx := context.Background()

	var cfg config.Config
	config.MustLoad(&cfg) // panic on error; nothing useful to do without configuration

	log := logger.New(logger.WithLevel(cfg.LogLevel), logger.WithJSONFormatter())

	echo := handler.NewStringHandler(func(ictx *invocation.Context, in string) (string, error) {
		ictx.Logger().Info("echoing invocation", logger.Event("echo"))
		return in, nil
	})

	lc, err := agent.NewLifecycle(echo,
		agent.WithConfig(cfg),
		agent.WithLifecycleLogger(log),
	)
	if err != nil {
		log.Error("failed to initialize runtime", logger.Component("bootstrap"), logger.Error(err))
		os.Exit(agent.ExitInitializationFailure)
	}

	code := lc.Run(ctx)
	if code != agent.ExitClean {
		log.Error("runtime exited with failure", logger.Component("bootstrap"), logger.Count("exit_code", code))
	} else {
		log.Info("runtime stopped cleanly", logger.Component("bootstrap"))
	}
	os.Exit(code)
}

// Command settlementctl runs settlement operations from a terminal against
// the configured database: batch transitions, distributions, cheque
// corrections and actor tokens for the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/bootstrap"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// actorEnv names the clerk when --actor is not given
const actorEnv = config.EnvPrefix + "_ACTOR"

type app struct {
	out      io.Writer
	actor    string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var de *shared.DomainError
		if errors.As(err, &de) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "settlementctl",
		Short:         "Operate grower payment batches, distributions and cheques",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.actor, "actor", os.Getenv(actorEnv), "clerk recorded on every change (env "+actorEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		a.batchCommand(),
		a.distributionCommand(),
		a.chequeCommand(),
		a.advanceCommand(),
		tokenCommand(out),
	)
	return root
}

// run opens the settlement runtime, executes fn and prints its result as JSON
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, rt *bootstrap.Runtime) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(logger.Config{Level: a.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	rt, err := bootstrap.Open(ctx, cfg, log, bootstrap.Options{AllowLockFallback: !cfg.App.IsProduction()})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(context.WithoutCancel(ctx)); closeErr != nil {
			log.Warn("Failed to release settlement runtime", zap.Error(closeErr))
		}
	}()

	result, err := fn(ctx, rt)
	if err != nil {
		return err
	}
	return a.print(result)
}

// mutate is run for commands that record an actor
func (a *app) mutate(cmd *cobra.Command, fn func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error)) error {
	if a.actor == "" {
		return fmt.Errorf("an actor is required: pass --actor or set %s", actorEnv)
	}
	return a.run(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
		return fn(ctx, rt, a.actor)
	})
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func requireReason(reason string) error {
	if reason == "" {
		return errors.New("--reason is required")
	}
	return nil
}

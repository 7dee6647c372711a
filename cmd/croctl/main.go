// Command croctl runs site analyses and chat questions from the terminal
// using the same configuration as the server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/app"
	"github.com/rahul4469/cro-analyzer/internal/config"
	"github.com/rahul4469/cro-analyzer/internal/services"
)

// cli holds what every subcommand needs once setup has run.
type cli struct {
	out    io.Writer
	logger *zap.Logger
	svc    *services.Services

	// setup loads configuration and builds logger and svc.
	setup func(ctx context.Context) error
}

func newCLI(out io.Writer) *cli {
	c := &cli{out: out, logger: zap.NewNop()}
	c.setup = c.setupFromEnv
	return c
}

func (c *cli) setupFromEnv(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	svc, err := app.NewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.logger, c.svc = logger, svc
	return nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "croctl",
		Short:         "Conversion rate optimization analysis from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(c.out)
	root.AddCommand(newAnalyzeCmd(c), newSEOCmd(c), newChatCmd(c), newSummaryCmd(c))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newCLI(os.Stdout)).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

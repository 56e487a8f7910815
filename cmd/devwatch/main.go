// Package main provides devwatch, which restarts a command whenever source
// files under a directory change.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fardannozami/habit-bot/internal/logger"
	"github.com/fardannozami/habit-bot/internal/supervisor"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	dir          string
	exts         []string
	debounce     time.Duration
	grace        time.Duration
	restartDelay time.Duration
	logLevel     string
}

func rootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "devwatch [flags] -- <command> [args...]",
		Short: "Restart a command when source files change",
		Long: `devwatch runs a command and restarts it whenever files under --dir
change. Bursts of changes are debounced into a single restart, and the old
process is interrupted (then killed after --grace) before the new one starts.

Example:
  devwatch --ext .go -- go run ./cmd/bot`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory to watch recursively")
	cmd.Flags().StringSliceVarP(&opts.exts, "ext", "e", []string{".go"}, "File extensions that trigger a restart (empty for all)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", time.Second, "Quiet period before a burst of changes triggers a restart")
	cmd.Flags().DurationVar(&opts.grace, "grace", 5*time.Second, "Time the old process gets to exit after an interrupt")
	cmd.Flags().DurationVar(&opts.restartDelay, "restart-delay", 5*time.Second, "Wait before restarting a process that exited on its own")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, opts options, args []string) error {
	if err := logger.Init(logger.Config{Level: opts.logLevel, Prefix: "devwatch"}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	root, err := filepath.Abs(opts.dir)
	if err != nil {
		return fmt.Errorf("resolve watch dir: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := supervisor.NewWatcher(supervisor.WatcherConfig{
		Root:          root,
		Extensions:    normalizeExts(opts.exts),
		DebounceDelay: opts.debounce,
		Logger:        logger.Get(),
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	sup := supervisor.New(supervisor.ExecRunner{Name: args[0], Args: args[1:]}, supervisor.Config{
		Grace:        opts.grace,
		RestartDelay: opts.restartDelay,
		Logger:       logger.Get(),
	})

	logger.Info("Supervising", "command", strings.Join(args, " "), "dir", root)
	return sup.Run(ctx, watcher.Changes())
}

// normalizeExts accepts "go" and ".go" alike.
func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

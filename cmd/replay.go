// File: cmd/replay.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/observability"
	"github.com/xkilldash9x/torin/internal/replay"
	"github.com/xkilldash9x/torin/internal/snapshot"
	"github.com/xkilldash9x/torin/internal/tree"
)

type replayOptions struct {
	follow bool
	poll   bool
	// Steps per second; zero means unlimited.
	rate float64
}

// newReplayCmd creates the `replay` command.
func newReplayCmd() *cobra.Command {
	var opts replayOptions

	replayCmd := &cobra.Command{
		Use:   "replay [tree] [script]",
		Short: "Applies a script of tree mutations and reports the layout changes of each step",
		Long: `The script holds one JSON operation per line, for example

  {"op":"update","target":"sidebar","attrs":{"width":"240"}}
  {"op":"add","parent":"list","kind":"text","text":"new item","index":0}
  {"op":"remove","target":"#12"}
  {"op":"resize","width":800,"height":600}

Every line is one step: the tree is re-measured incrementally and the boxes
that moved, resized, appeared or disappeared are printed. With --follow the
script is tailed and new lines are applied as they are written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runReplay(ctx, observability.Component("replay"), cfg, args[0], args[1], opts, cmd.OutOrStdout())
		},
	}

	replayCmd.Flags().BoolVar(&opts.follow, "follow", false, "keep reading the script as it grows until interrupted")
	replayCmd.Flags().BoolVar(&opts.poll, "poll", false, "poll the script for changes instead of using inotify")
	replayCmd.Flags().Float64Var(&opts.rate, "rate", 0, "maximum steps per second (0 for unlimited)")
	return replayCmd
}

// runReplay is the testable core of the replay command.
func runReplay(ctx context.Context, logger *zap.Logger, cfg config.Interface, treePath, scriptPath string, opts replayOptions, out io.Writer) error {
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	t, err := tree.ReadFile(treePath)
	if err != nil {
		return err
	}
	session, err := replay.NewSession(t, cfg.Layout(), logger)
	if err != nil {
		return err
	}

	outCfg := cfg.Output()
	if outCfg.Compress {
		// Each step would start a new brotli stream.
		logger.Warn("Compression is not supported for replay output; writing plain output.")
		outCfg.Compress = false
	}
	w := snapshot.NewWriter(out, outCfg, logger)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}

	initial := session.Snapshot()
	initial.RunID, initial.Source = runID, treePath
	if err := w.Write(initial); err != nil {
		return err
	}

	err = scriptLines(ctx, scriptPath, opts, logger, func(line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		op, err := replay.ParseOp([]byte(line))
		if err != nil {
			return fmt.Errorf("step %d: %w", session.Steps()+1, err)
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := session.Apply(op); err != nil {
			return fmt.Errorf("step %d: %w", session.Steps()+1, err)
		}
		step, changes := session.Step()
		return w.WriteDiff(step, changes)
	})
	if err != nil {
		return err
	}
	logger.Info("Replay complete.", zap.Int("steps", session.Steps()))
	return nil
}

// scriptLines feeds each line of the script to fn. When following, it
// returns only once ctx is done or fn fails.
func scriptLines(ctx context.Context, path string, opts replayOptions, logger *zap.Logger, fn func(string) error) error {
	if !opts.follow {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open replay script: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(scanner.Text()); err != nil {
				return err
			}
		}
		return scanner.Err()
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		MustExist: true,
		Poll:      opts.poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to tail replay script: %w", err)
	}
	defer func() {
		_ = t.Stop()
		// Cleanup releases the shared inotify watch; polling never took one.
		if !opts.poll {
			t.Cleanup()
		}
	}()
	logger.Info("Following replay script.", zap.String("path", path), zap.Bool("poll", opts.poll))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				logger.Warn("Error reading replay script line.", zap.Error(line.Err))
				continue
			}
			if err := fn(line.Text); err != nil {
				return err
			}
		}
	}
}

// File: cmd/layout.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/observability"
	"github.com/xkilldash9x/torin/internal/snapshot"
	"github.com/xkilldash9x/torin/internal/textmeasure"
	"github.com/xkilldash9x/torin/internal/tree"
	"github.com/xkilldash9x/torin/pkg/torin"
)

// newLayoutCmd creates the `layout` command.
func newLayoutCmd() *cobra.Command {
	var outputDir string

	layoutCmd := &cobra.Command{
		Use:   "layout [files...]",
		Short: "Lays out XML or JSON element trees and prints the computed boxes",
		Long: `Each document is measured once against the configured viewport.
Snapshots are written to stdout in argument order, or one file per document
when --output-dir is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runLayout(ctx, observability.Component("layout"), cfg, args, outputDir, cmd.OutOrStdout())
		},
	}

	layoutCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write one snapshot file per document into this directory")
	layoutCmd.Flags().Int("concurrency", 4, "number of documents laid out in parallel")
	return layoutCmd
}

// runLayout is the testable core of the layout command.
func runLayout(ctx context.Context, logger *zap.Logger, cfg config.Interface, files []string, outputDir string, out io.Writer) error {
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	snapshots := make([]*snapshot.Snapshot, len(files))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch().Concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			s, err := layoutFile(path, cfg.Layout(), logger)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			s.RunID = runID
			if outputDir != "" {
				return writeSnapshotFile(outputDir, s, cfg.Output(), logger)
			}
			snapshots[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if outputDir == "" {
		w := snapshot.NewWriter(out, cfg.Output(), logger)
		for _, s := range snapshots {
			if err := w.Write(s); err != nil {
				return err
			}
		}
	}
	logger.Info("Layout complete.", zap.Int("documents", len(files)))
	return nil
}

// layoutFile reads one document and measures it from scratch.
func layoutFile(path string, cfg config.LayoutConfig, logger *zap.Logger) (*snapshot.Snapshot, error) {
	t, err := tree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	engine := torin.New[tree.NodeID](torin.WithLogger(logger))
	t.Attach(engine)

	measurer, err := textmeasure.FromConfig(cfg, t, textmeasure.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	viewport := torin.NewArea(0, 0, float32(cfg.ViewportWidth), float32(cfg.ViewportHeight))
	engine.Measure(t.Root(), viewport, measurer, t)

	s := snapshot.Capture(t, engine, viewport)
	s.Source = path
	logger.Debug("Measured document.", zap.String("path", path), zap.Int("nodes", len(s.Nodes)))
	return s, nil
}

// snapshotFileName maps doc.xml to doc.json, doc.txt or doc.json.br.
func snapshotFileName(source string, cfg config.OutputConfig) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	ext := ".json"
	if cfg.Format == config.FormatText {
		ext = ".txt"
	}
	if cfg.Compress {
		ext += ".br"
	}
	return base + ext
}

func writeSnapshotFile(dir string, s *snapshot.Snapshot, cfg config.OutputConfig, logger *zap.Logger) (err error) {
	path := filepath.Join(dir, snapshotFileName(s.Source, cfg))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close snapshot file: %w", closeErr)
		}
	}()
	if err := snapshot.NewWriter(f, cfg, logger).Write(s); err != nil {
		return err
	}
	logger.Info("Snapshot written.", zap.String("path", path))
	return nil
}

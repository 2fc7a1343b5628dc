package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/uiregistry/pkg/observability"
	"github.com/gnana997/uiregistry/pkg/scanner"
	"github.com/gnana997/uiregistry/pkg/watcher"
)

func newWatchCommand() *cobra.Command {
	var flags scanFlags
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Scan, then rescan whenever sources or theme files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(rootArg(args), flags)
			if err != nil {
				return err
			}
			logger := newLogger()
			metrics := observability.NewMetrics()

			sc := newScanner(cfg, metrics, logger)
			defer sc.Close()

			sess, err := sc.NewSession(cfg.Root)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rs := &rescanner{cfg: cfg, sess: sess, metrics: metrics, logger: logger, out: cmd.OutOrStdout()}
			if err := rs.rescan(ctx, nil); isFatalScanError(err) {
				return err
			}

			w, err := watcher.New(cfg.Root, watcher.Options{
				Debounce: debounce,
				Exclude:  cfg.Scan.Exclude,
				Logger:   logger,
			}, func(changed []string) {
				if err := rs.rescan(ctx, changed); err != nil && ctx.Err() == nil {
					logger.Error("rescan failed", "error", err)
				}
			})
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			logger.Info("watching for changes", "root", cfg.Root, "output", cfg.Output)
			<-ctx.Done()
			return nil
		},
	}

	addScanFlags(cmd, &flags)
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a rescan")
	return cmd
}

// rescanner rebuilds the registry on one long-lived session so unchanged
// files are not parsed again.
type rescanner struct {
	cfg     settings
	sess    *scanner.Session
	metrics *observability.Metrics
	logger  *slog.Logger
	out     io.Writer
}

func (r *rescanner) rescan(ctx context.Context, changed []string) error {
	if len(changed) > 0 {
		r.logger.Info("changes detected", "files", len(changed))
		r.sess.Invalidate(changed...)
	}

	// rediscover so created and deleted files are picked up
	files, err := scanner.DiscoverFiles(r.cfg.Root, r.cfg.Scan)
	if err != nil {
		r.logger.Warn("discovery failed", "error", err)
		return err
	}
	res, err := r.sess.Scan(ctx, files)
	writeMetrics(r.cfg, r.metrics, r.logger)
	if err != nil {
		r.logger.Warn("scan failed", "error", err)
		return err
	}

	if r.cfg.Output == stdoutOutput {
		data, err := res.Registry.MarshalIndent()
		if err != nil {
			return err
		}
		_, err = r.out.Write(data)
		return err
	}
	if err := res.Registry.Save(r.cfg.Output); err != nil {
		return err
	}
	r.logger.Info("registry updated",
		"output", r.cfg.Output,
		"components", len(res.Registry.Components),
		"reparsed", res.Stats.FilesParsed,
		"total_ms", res.Stats.TotalTimeMs)
	return nil
}

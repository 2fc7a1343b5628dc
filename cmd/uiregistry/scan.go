package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gnana997/uiregistry/pkg/observability"
	"github.com/gnana997/uiregistry/pkg/scanner"
)

// stdoutOutput makes scan print the registry instead of saving it.
const stdoutOutput = "-"

const maxListedDiagnostics = 20

func newScanCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan a project and write its registry",
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

			res, err := sc.Run(cmd.Context(), cfg.Root)
			writeMetrics(cfg, metrics, logger)
			if err != nil {
				return err
			}

			if cfg.Output == stdoutOutput {
				data, err := res.Registry.MarshalIndent()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := res.Registry.Save(cfg.Output); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), cfg.Output, res)
			return nil
		},
	}

	addScanFlags(cmd, &flags)
	return cmd
}

func addScanFlags(cmd *cobra.Command, flags *scanFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.output, "out", "o", "", "registry output path, - for stdout (default <root>/"+defaultOutput+")")
	f.StringVar(&flags.name, "name", "", "registry name (default: root directory name)")
	f.IntVar(&flags.maxDepth, "max-depth", 0, fmt.Sprintf("maximum re-export hops to follow (default %d)", scanner.DefaultMaxDepth))
	f.IntVar(&flags.workers, "workers", 0, "analysis workers (default: based on CPU count)")
	f.StringVar(&flags.typeAnalyzer, "type-analyzer", "", "command that emits type-aware component descriptions")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after each scan")
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func newScanner(cfg settings, metrics *observability.Metrics, logger *slog.Logger) *scanner.Scanner {
	opts := scanner.Options{
		Config:  cfg.Scan,
		Name:    cfg.Name,
		Metrics: metrics,
		Logger:  logger,
	}
	if cfg.TypeAnalyzer != "" {
		opts.TypeAnalyzer = scanner.NewCommandAnalyzer(cfg.TypeAnalyzer, defaultTypeAnalyzerTimeout, logger)
	}
	return scanner.NewScanner(opts)
}

func writeMetrics(cfg settings, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics", "error", err)
	}
}

// printSummary writes a short human-readable account of a scan.
func printSummary(w io.Writer, output string, res *scanner.Result) {
	st := res.Stats
	reg := res.Registry

	fmt.Fprintf(w, "Scanned %s in %s: %s (%d via barrels), %s, %s\n",
		english.Plural(st.FilesDiscovered, "file", ""),
		(time.Duration(st.TotalTimeMs) * time.Millisecond).String(),
		english.Plural(len(reg.Components), "component", ""),
		st.BarrelComponents,
		english.Plural(len(reg.Tokens), "token", ""),
		english.Plural(len(reg.Diagnostics), "diagnostic", ""),
	)
	if reg.Theme != nil {
		fmt.Fprintf(w, "Theme: %s (%s naming)\n",
			firstNonEmpty(reg.Theme.Stylesheet, reg.Theme.ConfigFile), reg.Theme.NamingConvention)
	}

	size := "?"
	if info, err := os.Stat(output); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Fprintf(w, "Wrote %s (%s)\n", output, size)

	if len(reg.Diagnostics) == 0 {
		return
	}
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Kind", "File", "Symbol", "Message"})
	for i, d := range reg.Diagnostics {
		if i == maxListedDiagnostics {
			break
		}
		tbl.AppendRow(table.Row{d.Kind, d.File, d.Symbol, d.Message})
	}
	if n := len(reg.Diagnostics); n > maxListedDiagnostics {
		tbl.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%s more", humanize.Comma(int64(n-maxListedDiagnostics)))})
	}
	fmt.Fprintln(w, tbl.Render())
}

// isFatalScanError reports whether a watch loop must give up on err.
func isFatalScanError(err error) bool {
	return errors.Is(err, scanner.ErrRootUnreadable)
}

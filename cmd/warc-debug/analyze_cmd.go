package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	warcdebug "github.com/kb-dk/warc-debug"
)

func init() {
	rootCmd.AddCommand(analyzeCmd())
}

func analyzeCmd() *cobra.Command {
	var verbose bool
	var quiet bool
	var quick bool

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Report the gzip member layout of one or more files",
		Long: `Parse each file as a (possibly concatenated) gzip stream and classify
its compression shape: uncompressed, a single oversized member, a proper
multi-member stream, structurally faulty, trailed by garbage, or a single
member whose content is itself a multi-member stream.

Exit status is 0 regardless of the classification a file receives; a
nonzero exit means one or more files could not be opened or read at all.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var log *slog.Logger
			if verbose {
				log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			} else {
				log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			}

			var failures int
			for _, path := range args {
				log.Debug("analyzing", "path", path)

				if quick {
					status, err := warcdebug.QuickCheck(path)
					if err != nil {
						fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
						failures++
						continue
					}
					if !quiet {
						printQuickStatus(path, status)
					}
					continue
				}

				rpt, err := warcdebug.Analyze(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failures++
					continue
				}

				if !quiet {
					printStatus(rpt)
					for _, m := range rpt.Members {
						fmt.Println("  " + m.String())
					}
					fmt.Println("  " + rpt.Recommendation())
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d files could not be read", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show debug-level diagnostics")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-file reports; unreadable files still print an error and set a nonzero exit status")
	cmd.Flags().BoolVar(&quick, "quick", false, "Fast triage pass: peek at each file instead of fully decoding it")

	return cmd
}

func printStatus(rpt *warcdebug.Report) {
	fmt.Println(statusPaint(rpt.Status)("%s: %s", rpt.Filename, rpt.String()))
}

func printQuickStatus(path string, status warcdebug.Status) {
	fmt.Println(statusPaint(status)("%s: %s (quick check)", path, status))
}

func statusPaint(status warcdebug.Status) func(format string, a ...interface{}) string {
	switch status {
	case warcdebug.StatusMultiCompressed:
		return color.GreenString
	case warcdebug.StatusUncompressed, warcdebug.StatusSingleCompressed, warcdebug.StatusRecompressed:
		return color.YellowString
	case warcdebug.StatusFaultyCompressed, warcdebug.StatusGarbageAtEnd:
		return color.RedString
	default:
		return fmt.Sprintf
	}
}

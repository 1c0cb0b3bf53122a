package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/agentic-research/caomdb/internal/ingest"
	"github.com/agentic-research/caomdb/internal/logger"
	"github.com/agentic-research/caomdb/internal/metrics"
	"github.com/agentic-research/caomdb/internal/store"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

var workers int

var ingestCmd = &cobra.Command{
	Use:   "ingest [document or directory...]",
	Short: "Ingest observation documents into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		s, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		if err := s.Prepare(ctx, cfg.DropTables); err != nil {
			return err
		}

		m := metrics.New()
		engine := ingest.NewEngine(osfs.New("/"), s)
		engine.Workers = cfg.Workers
		engine.Logger = logger.Component(log, "ingest")
		engine.Metrics = m

		start := time.Now()
		roots, err := absPaths(args)
		if err != nil {
			return err
		}
		report, err := engine.Ingest(ctx, roots...)
		if report != nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s in %v\n", report, time.Since(start).Round(time.Millisecond))
			for _, f := range report.Failures() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", f.Path, f.Err)
			}
		}
		if werr := m.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			log.Warn().Err(werr).Str("textfile", cfg.Metrics.Textfile).Msg("metrics not written")
		}
		if err != nil {
			return err
		}
		return report.Err()
	},
}

// absPaths resolves arguments against the working directory; the engine's
// filesystem is rooted at /.
func absPaths(args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func init() {
	ingestCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent mapping workers (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}

package cmd

import (
	"github.com/agentic-research/caomdb/internal/store"
	"github.com/spf13/cobra"
)

var dropTables bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Observation and Plane tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		drop := cfg.DropTables || dropTables

		s, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Prepare(ctx, drop); err != nil {
			return err
		}
		log.Info().Str("database", cfg.Database).Bool("dropped", drop).Msg("database prepared")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&dropTables, "drop", false, "Drop existing tables first")
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/caomdb/internal/config"
	"github.com/agentic-research/caomdb/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	database   string
	logLevel   string
	pretty     bool

	cfg *config.Config
	log zerolog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "caomdb.hcl", "Path to HCL config file")
	rootCmd.PersistentFlags().StringVarP(&database, "database", "d", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Human-readable log output")
}

var rootCmd = &cobra.Command{
	Use:           "caomdb",
	Short:         "Load CAOM observation metadata into a relational database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("database") {
			loaded.Database = database
		}
		if flags.Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if flags.Changed("pretty") {
			loaded.Log.Pretty = pretty
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		cfg = loaded
		log = logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Pretty: cfg.Log.Pretty,
			Output: cmd.ErrOrStderr(),
		})
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

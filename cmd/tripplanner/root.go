package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-router/config"
	"github.com/theoremus-urban-solutions/transit-router/internal"
)

const (
	configEnvName   = "TRIPPLANNER_CONFIG"
	logLevelEnvName = "TRIPPLANNER_LOG_LEVEL"
)

// NewRootCommand returns the tripplanner command tree
func NewRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:           "tripplanner",
		Short:         "Plan trips on a GTFS feed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			var paths []string
			if path != "" {
				paths = append(paths, path)
			}
			if err := config.LoadAppConfig(paths...); err != nil {
				return err
			}
			level := config.Config.Logging.Level
			if l, _ := cmd.Flags().GetString("log-level"); l != "" {
				level = l
			}
			internal.InitLogging(level, config.Config.Logging.Format)
			return nil
		},
	}

	c.PersistentFlags().StringP("config", "c", os.Getenv(configEnvName), "path of config.yml")
	c.PersistentFlags().StringP("feed", "f", "", "feed name from config feeds[], defaults to the first")
	c.PersistentFlags().String("log-level", os.Getenv(logLevelEnvName), "log level (debug|info|warn|error|crit)")

	c.AddCommand(NewPlanCommand())
	c.AddCommand(NewGraphCommand())
	return c
}

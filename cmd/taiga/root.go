package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copyleftdev/TAIGA/internal/logging"
)

var (
	logLevel  string
	logFormat string
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taiga",
	Short: "Gradient-free numerical optimization service",
	Long: `TAIGA runs gradient-free metaheuristics (genetic algorithm, particle
swarm, simulated annealing, differential evolution, Nelder-Mead, and ant
colony) over bounded continuous problems, as a one-shot CLI or as an HTTP
service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(&logging.Config{
			Level:  logLevel,
			Format: logFormat,
			Output: "stderr",
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (json, console)")
}

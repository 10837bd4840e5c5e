package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copyleftdev/TAIGA/internal/optimization/objectives"
	"github.com/copyleftdev/TAIGA/internal/optimization/registry"
)

var (
	runAlgorithm string
	runObjective string
	runDims      int
	runSeed      int64
	runMaximize  bool
	runTimeout   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization and print the result as JSON",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runAlgorithm, "algorithm", "pso", "Algorithm (ga, pso, sa, de, nelder-mead, aco)")
	runCmd.Flags().StringVar(&runObjective, "objective", "sphere", "Benchmark objective to optimize")
	runCmd.Flags().IntVar(&runDims, "dims", 0, "Problem dimensionality (0 uses the objective's default)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Random seed (0 means time-seeded)")
	runCmd.Flags().BoolVar(&runMaximize, "maximize", false, "Maximize instead of minimize")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort the run after this duration (0 means no limit)")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	problem, err := objectives.Problem(runObjective, runDims, !runMaximize)
	if err != nil {
		return err
	}

	opt, err := registry.New(problem, registry.Config{
		Algorithm: runAlgorithm,
		Seed:      runSeed,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	logger.Info("running optimization",
		zap.String("algorithm", runAlgorithm),
		zap.String("objective", runObjective),
		zap.Int64("seed", runSeed),
	)

	start := time.Now()
	result, err := opt.Optimize(ctx)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	logger.Info("optimization finished",
		zap.Float64("fitness", result.Fitness),
		zap.Int("evaluations", result.Evaluations),
		zap.Duration("elapsed", time.Since(start)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

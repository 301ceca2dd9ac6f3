package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"queryapi/core"
	"queryapi/pkg/config"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "queryapi-coordinator",
		Short: "evaluate indexer rules against the block stream and fan matches out to real-time queues",
	}
	rootCmd.AddCommand(chainCmd(core.ChainIDMainnet))
	rootCmd.AddCommand(chainCmd(core.ChainIDTestnet))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func chainCmd(chainID core.ChainID) *cobra.Command {
	cmd := &cobra.Command{
		Use:   chainID.String(),
		Short: fmt.Sprintf("index the %s chain", chainID),
	}

	fromBlock := &cobra.Command{
		Use:   "from-block <height>",
		Short: "start streaming from the given block height",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse height %q: %w", args[0], err)
			}
			return run(cmd.Context(), chainID, startOptions{mode: startFromBlock, height: height})
		},
	}
	fromInterruption := &cobra.Command{
		Use:   "from-interruption",
		Short: "resume from the last indexed block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), chainID, startOptions{mode: startFromInterruption})
		},
	}
	fromLatest := &cobra.Command{
		Use:   "from-latest",
		Short: "start from the chain's finalized head",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), chainID, startOptions{mode: startFromLatest})
		},
	}

	cmd.AddCommand(fromBlock, fromInterruption, fromLatest)
	return cmd
}

func initLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

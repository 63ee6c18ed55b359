package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/nftlend/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	networkFlag string
	rpcFlag     string
	logLevel    string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "nftlend",
	Short: "Peer-to-peer loans against NFT collateral",
	Long: `nftlend talks to the NFT-collateralized lending contract.

  Read loans and ownership, prepare requestLoan / repayLoan / checkLoanDefault
  calls, dry-run or sign and send them, and query the contract's events.

The network defaults to the configured one (sepolia). Override it for a single
invocation with --network, or pin an endpoint with --rpc.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger, err := newLogger(level)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Execute runs the root command. Ctrl-C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Long = ui.Banner() + "\n" + rootCmd.Long

	// NFTLEND_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("NFTLEND_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.nftlend)")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network name (default: config)")
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC URL; skips endpoint selection")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (default: config)")

	rootCmd.AddCommand(
		loanCmd,
		ownerCmd,
		abiCmd,
		configCmd,
		walletCmd,
		networkCmd,
	)
}

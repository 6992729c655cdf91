package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sheetsync",
	Short: "Order-export reconciliation for Google Sheets",
	Long:  "Parses CSV/XLSX order and message exports, extracts product names, detects the owning company, and syncs cleaned rows into per-company spreadsheet tabs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/juststeveking/lodestone/internal/status"
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the server address to the clipboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}

		address := status.Address(cfg.Server.Host, cfg.Server.Port)
		if err := clipboard.WriteAll(address); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Copied %s to clipboard\n", address)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}

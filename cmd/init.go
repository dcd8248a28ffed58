package cmd

import (
	"fmt"

	"github.com/juststeveking/lodestone/internal/config"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lodestone configuration",
	Long: `Create a new lodestone configuration file at ~/.config/lodestone/config.yml
with sensible defaults. Edit this file to point at your game server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(forceInit); err != nil {
			return err
		}

		configPath, _ := config.GetConfigPath()
		out := cmd.OutOrStdout()

		if forceInit {
			fmt.Fprintf(out, "✓ Configuration reset at %s\n", configPath)
		} else {
			fmt.Fprintf(out, "✓ Configuration initialized at %s\n", configPath)
		}

		fmt.Fprintln(out, "\nSet your server with 'lodestone server:set --host <host>', then run:")
		fmt.Fprintln(out, "  lodestone")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"fmt"

	"github.com/juststeveking/lodestone/internal/config"
	"github.com/juststeveking/lodestone/internal/status"
	"github.com/spf13/cobra"
)

var (
	serverName string
)

var serverSetCmd = &cobra.Command{
	Use:   "server:set",
	Short: "Set the game server to show",
	Long: `Update the game server in your lodestone configuration.

Examples:
  lodestone server:set --host mc.example.org
  lodestone server:set --host play.example.net --port 25570 --name "Example SMP"
  lodestone server:set --endpoint https://status.example.org/api`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("host") && !flags.Changed("port") && !flags.Changed("endpoint") && !flags.Changed("name") {
			return fmt.Errorf("nothing to set (use --host, --port, --endpoint or --name)")
		}

		cfg, err := loadConfig(cmd, true)
		if err != nil {
			return err
		}

		if flags.Changed("name") {
			cfg.Server.Name = serverName
		}

		// persist only the edits, not env overrides or expanded placeholders
		err = config.UpdateConfig(func(file *config.Config) {
			if flags.Changed("host") {
				file.Server.Host = flagHost
			}
			if flags.Changed("port") {
				file.Server.Port = flagPort
			}
			if flags.Changed("endpoint") {
				file.Endpoint = flagEndpoint
			}
			if flags.Changed("name") {
				file.Server.Name = serverName
			}
		})
		if err != nil {
			return err
		}

		configPath, _ := config.GetConfigPath()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Showing %s (%s) from %s\n",
			cfg.Server.Name, status.Address(cfg.Server.Host, cfg.Server.Port), configPath)

		return nil
	},
}

func init() {
	serverSetCmd.Flags().StringVarP(&serverName, "name", "n", "", "display name of the server")

	rootCmd.AddCommand(serverSetCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serverShowCmd = &cobra.Command{
	Use:   "server:show",
	Short: "Show the configured game server",
	Long: `Display the game server and polling settings lodestone will use,
after environment and flag overrides.

Example:
  lodestone server:show
  LODESTONE_SERVER_HOST=play.example.net lodestone server:show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Server: %s\n", cfg.Server.Name)
		fmt.Fprintln(out, "─────────────────────────────────────")
		fmt.Fprintf(out, "Host:             %s\n", cfg.Server.Host)
		fmt.Fprintf(out, "Port:             %d\n", cfg.Server.Port)
		fmt.Fprintf(out, "Endpoint:         %s\n", cfg.Endpoint)
		fmt.Fprintf(out, "Poll Interval:    %s\n", cfg.PollInterval)
		fmt.Fprintf(out, "Timeout:          %s\n", cfg.Timeout)
		fmt.Fprintf(out, "Notifications:    %t\n", cfg.Notifications)
		fmt.Fprintf(out, "Listen:           %s\n", cfg.Listen)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverShowCmd)
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/juststeveking/lodestone/internal/monitor"
	"github.com/juststeveking/lodestone/internal/status"
	"github.com/spf13/cobra"
)

var (
	statusJSON    bool
	statusVerbose bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll the game server once and print its status",
	Long: `Query the status endpoint once and print the result. Exits non-zero
when the server could not be queried.

Examples:
  lodestone status
  lodestone status --json
  lodestone status --host play.example.net --port 25570`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}

		d, err := cfg.Durations()
		if err != nil {
			return err
		}

		level := slog.LevelError
		if statusVerbose {
			level = slog.LevelDebug
		}

		checker := monitor.NewHTTPChecker(cfg.Endpoint, d.Timeout, newLogger(cmd.ErrOrStderr(), level))
		defer checker.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		outcome := checker.Check(ctx, cfg.Server.Host, cfg.Server.Port)
		s := outcome.Status(cfg.Server.Host)
		out := cmd.OutOrStdout()

		if statusJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(s); err != nil {
				return fmt.Errorf("failed to encode status: %w", err)
			}
		} else {
			indicator := "● Offline"
			if s.Online {
				indicator = "● Online"
			}

			fmt.Fprintf(out, "%s (%s)\n", cfg.Server.Name, status.Address(cfg.Server.Host, cfg.Server.Port))
			fmt.Fprintln(out, "─────────────────────────────────────")
			fmt.Fprintf(out, "Status:   %s\n", indicator)
			fmt.Fprintf(out, "Players:  %d/%d (%.0f%%)\n", s.Players.Online, s.Players.Max, status.PlayerPercent(s))
			fmt.Fprintf(out, "Version:  %s\n", s.Version)
			fmt.Fprintf(out, "MOTD:     %s\n", s.MOTD)
		}

		if !outcome.OK() {
			return fmt.Errorf("status poll failed (%s): %w", outcome.Kind, outcome.Err)
		}

		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the status as JSON")
	statusCmd.Flags().BoolVarP(&statusVerbose, "verbose", "v", false, "log request details to stderr")
	rootCmd.AddCommand(statusCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/juststeveking/lodestone/internal/monitor"
	"github.com/juststeveking/lodestone/internal/notify"
	"github.com/juststeveking/lodestone/internal/tui"
	"github.com/spf13/cobra"
)

var (
	flagHost     string
	flagPort     int
	flagEndpoint string
)

var rootCmd = &cobra.Command{
	Use:   "lodestone",
	Short: "Live status for your game server, right in the terminal",
	Long: `Lodestone is a landing page for a single game server. It polls a status
endpoint and shows whether the server is online, how many players are on,
the version it runs and its message of the day.

Press c to copy the server address, r to refresh, e to change the server
and q to quit. Run 'lodestone serve' for the same page in a browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, true)
		if err != nil {
			return err
		}

		logger, closeLog, err := newFileLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		poller, err := monitor.NewPoller(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create poller: %w", err)
		}

		// Setup context with cancellation on OS signals
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		poller.Start(ctx)

		notifier := notify.NewNotifier(cfg.Notifications, cfg.Server.Name)
		model := tui.NewModel(ctx, cfg, poller, notifier, logger)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

		final, err := p.Run()

		// the model may have replaced the poller while running
		if m, ok := final.(tui.Model); ok {
			m.Poller().Stop()
		} else {
			poller.Stop()
		}

		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "game server host (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "game server port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "status API endpoint (overrides config)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

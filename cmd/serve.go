package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/juststeveking/lodestone/internal/monitor"
	"github.com/juststeveking/lodestone/internal/notify"
	"github.com/juststeveking/lodestone/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the landing page over HTTP",
	Long: `Start a web server with the landing page for your game server.

The server polls the status endpoint on the configured interval and renders
the status widget and a copy button for the address. The current status is
also available as JSON at /api/status.

Example:
  lodestone serve
  lodestone serve --listen 127.0.0.1:3000`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd.ErrOrStderr(), slog.LevelInfo)

		cfg, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen = serveListen
		}

		d, err := cfg.Durations()
		if err != nil {
			return err
		}

		poller, err := monitor.NewPoller(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create poller: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		page := server.Page{
			Name:           cfg.Server.Name,
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			PollInterval:   d.PollInterval,
			CopiedDuration: d.CopiedDuration,
		}
		srv := server.NewServer(poller.Store(), page, cfg.Listen, logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}

		poller.Start(ctx)
		defer poller.Stop()

		go notify.NewNotifier(cfg.Notifications, cfg.Server.Name).Watch(ctx, poller.Store())

		<-ctx.Done()
		logger.Info("shutting down")
		srv.Wait()

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "address to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

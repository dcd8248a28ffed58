package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/juststeveking/lodestone/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and applies the global flag overrides.
// A missing file is created when create is set and replaced by the built-in
// defaults otherwise.
func loadConfig(cmd *cobra.Command, create bool) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w (run 'lodestone init' to create one)", err)
		}

		if create {
			fmt.Fprintln(cmd.ErrOrStderr(), "Config not found, creating default config...")
			if initErr := config.InitConfig(false); initErr != nil {
				return nil, fmt.Errorf("failed to create default config: %w", initErr)
			}
			cfg, err = config.LoadConfig()
			if err != nil {
				return nil, fmt.Errorf("failed to load config after creation: %w", err)
			}
		} else {
			cfg = config.Default()
		}
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = flagHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = flagPort
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = config.ResolveEnv(flagEndpoint)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newLogger creates a JSON logger on stderr for the non-interactive commands
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// newFileLogger creates a text logger writing to the configured log file,
// since the TUI owns the terminal.
func newFileLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	path, err := cfg.ResolveLogFile()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return logger, func() { _ = f.Close() }, nil
}

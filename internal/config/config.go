package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint       = "https://functions.poehali.dev/3ef20a11-5d8d-4049-be34-8190dd7d130a"
	DefaultServerName     = "ProxyCraft"
	DefaultHost           = "mc.proxycraft.ru"
	DefaultPort           = 25565
	DefaultPollInterval   = "10s"
	DefaultTimeout        = "8s"
	DefaultCopiedDuration = "2s"
	DefaultListen         = ":8080"

	envPrefix = "LODESTONE"
)

// Config represents the lodestone configuration
type Config struct {
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	Server         Server `yaml:"server" mapstructure:"server"`
	PollInterval   string `yaml:"poll_interval" mapstructure:"poll_interval"`
	Timeout        string `yaml:"timeout" mapstructure:"timeout"`
	CopiedDuration string `yaml:"copied_duration" mapstructure:"copied_duration"`
	Notifications  bool   `yaml:"notifications" mapstructure:"notifications"`
	LogFile        string `yaml:"log_file,omitempty" mapstructure:"log_file"`
	Listen         string `yaml:"listen" mapstructure:"listen"`
}

// Server identifies the game server whose status is shown
type Server struct {
	Name string `yaml:"name" mapstructure:"name"`
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// Durations holds the parsed duration settings
type Durations struct {
	PollInterval   time.Duration
	Timeout        time.Duration
	CopiedDuration time.Duration
}

// Default returns a config populated with the built-in defaults
func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Server: Server{
			Name: DefaultServerName,
			Host: DefaultHost,
			Port: DefaultPort,
		},
		PollInterval:   DefaultPollInterval,
		Timeout:        DefaultTimeout,
		CopiedDuration: DefaultCopiedDuration,
		Listen:         DefaultListen,
	}
}

// GetConfigPath returns the path to the global config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "lodestone", "config.yml"), nil
}

// InitConfig creates the config directory and file with default content
func InitConfig(force bool) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfig reads the config file and applies LODESTONE_* environment overrides
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return loadFrom(configPath)
}

func loadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default so AutomaticEnv can see it during Unmarshal
	def := Default()
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("server.name", def.Server.Name)
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("copied_duration", def.CopiedDuration)
	v.SetDefault("notifications", def.Notifications)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("listen", def.Listen)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Endpoint = ResolveEnv(cfg.Endpoint)

	return &cfg, nil
}

// SaveConfig writes the config back to the file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// UpdateConfig applies edit to the config file as written and saves it.
// Environment overrides and ${VAR} placeholders are left out, so a save never
// persists them. A missing file starts from the defaults.
func UpdateConfig(edit func(*Config)) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	cfg, err := readFile(configPath)
	if err != nil {
		return err
	}

	edit(cfg)

	return SaveConfig(cfg)
}

// readFile decodes the config file without viper, over the defaults
func readFile(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the config can drive a poller
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		errs = append(errs, errors.New("server.host is required"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port))
	}
	if _, err := c.Durations(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Durations parses the duration settings
func (c *Config) Durations() (Durations, error) {
	var d Durations
	var err error

	if d.PollInterval, err = parsePositive("poll_interval", c.PollInterval); err != nil {
		return d, err
	}
	if d.Timeout, err = parsePositive("timeout", c.Timeout); err != nil {
		return d, err
	}
	if d.CopiedDuration, err = parsePositive("copied_duration", c.CopiedDuration); err != nil {
		return d, err
	}

	return d, nil
}

func parsePositive(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}

// ResolveLogFile returns the log file path, defaulting to one next to the config file
func (c *Config) ResolveLogFile() (string, error) {
	if c.LogFile != "" {
		return ResolveEnv(c.LogFile), nil
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), "lodestone.log"), nil
}

// getDefaultConfig returns the default configuration as YAML
func getDefaultConfig() string {
	return fmt.Sprintf(`# Lodestone Configuration
# Status API queried with ?host=<host>&port=<port>
endpoint: %s

# The game server shown on the landing page
server:
  name: %s
  host: %s
  port: %d

poll_interval: %s
timeout: %s
copied_duration: %s

# Desktop notification when the server goes offline or comes back
notifications: false

# Address for 'lodestone serve'
listen: "%s"
`, DefaultEndpoint, DefaultServerName, DefaultHost, DefaultPort,
		DefaultPollInterval, DefaultTimeout, DefaultCopiedDuration, DefaultListen)
}

// ResolveEnv expands ${VAR_NAME} and $VAR_NAME placeholders from the environment
func ResolveEnv(value string) string {
	return os.ExpandEnv(value)
}

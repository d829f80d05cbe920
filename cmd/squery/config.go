package main

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"kvarenzis.github.io/squery/client"
)

type config struct {
	Host             string `yaml:"host"`
	Port             uint16 `yaml:"port"`
	Password         string `yaml:"password"`
	Username         string `yaml:"username"`
	Network          string `yaml:"network"` // tcp (default) or ws
	Permissions      uint64 `yaml:"permissions"`
	KickPower        uint8  `yaml:"kickPower"`
	Suppress         bool   `yaml:"suppress"`
	SubscribeConsole bool   `yaml:"subscribeConsole"`
	SubscribeLogs    bool   `yaml:"subscribeLogs"`
	TimeoutSeconds   int    `yaml:"timeoutSeconds"`
	LogLevel         string `yaml:"logLevel"`
	LogFile          string `yaml:"logFile"`
	MetricsAddr      string `yaml:"metricsAddr"`
}

func readConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &config{
		Host:      "127.0.0.1",
		Port:      7777,
		KickPower: 0xff,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// Password can live in the environment instead of on disk.
	if cfg.Password == "" {
		cfg.Password = os.Getenv("SQUERY_PASSWORD")
	}
	return cfg, nil
}

func (c *config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *config) options() []client.Option {
	var opts []client.Option
	if c.Username != "" {
		opts = append(opts, client.WithUsername(c.Username))
	}
	if c.Network == "ws" {
		opts = append(opts, client.WithNetwork(client.NetworkWS))
	}
	if c.Permissions != 0 {
		opts = append(opts, client.WithPermissions(c.Permissions))
	}
	if c.KickPower != 0xff {
		opts = append(opts, client.WithKickPower(c.KickPower))
	}
	if c.Suppress {
		opts = append(opts, client.WithSuppressResponses())
	}
	if c.SubscribeConsole {
		opts = append(opts, client.WithSubscribeConsole())
	}
	if c.SubscribeLogs {
		opts = append(opts, client.WithSubscribeLogs())
	}
	if c.TimeoutSeconds > 0 {
		opts = append(opts, client.WithCommandTimeout(time.Duration(c.TimeoutSeconds)*time.Second))
	}
	return opts
}

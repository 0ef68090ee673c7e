package config

import (
	"fmt"

	"github.com/caarlos0/env"
	"github.com/spf13/pflag"
)

type Config struct {
	ListenAddr      string `env:"LISTEN_ADDR" envDefault:":8080"`
	APIBaseURL      string `env:"API_BASE_URL" envDefault:"https://stg.dhunjam.in"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile         string `env:"LOG_FILE"`
	JournalDBPath   string `env:"JOURNAL_DB_PATH"`
	LoginRatePerMin int    `env:"LOGIN_RATE_PER_MIN" envDefault:"10"`
	LoginBurst      int    `env:"LOGIN_BURST" envDefault:"5"`
	BreakerFailures int    `env:"API_BREAKER_FAILURES" envDefault:"5"`
}

// Load reads the environment and then applies command-line flags from args
// (without the program name) on top of it.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	fs := pflag.NewFlagSet("venueadmin", pflag.ContinueOnError)
	fs.StringVarP(&cfg.ListenAddr, "listen", "a", cfg.ListenAddr, "HTTP listen address in a form host:port")
	fs.StringVarP(&cfg.APIBaseURL, "api", "u", cfg.APIBaseURL, "Base URL of the account-admin API")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also append logs to this file")
	fs.StringVarP(&cfg.JournalDBPath, "journal", "j", cfg.JournalDBPath, "SQLite file for the save journal; empty disables it")
	fs.IntVar(&cfg.LoginRatePerMin, "login-rate", cfg.LoginRatePerMin, "Login attempts allowed per client per minute; 0 disables limiting")
	fs.IntVar(&cfg.LoginBurst, "login-burst", cfg.LoginBurst, "Login attempts a client may make in a burst")
	fs.IntVar(&cfg.BreakerFailures, "breaker-failures", cfg.BreakerFailures, "Consecutive API network failures before calls fail fast; 0 disables the breaker")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API base URL must not be empty")
	}
	if cfg.LoginRatePerMin < 0 || cfg.LoginBurst < 0 || cfg.BreakerFailures < 0 {
		return nil, fmt.Errorf("rate limits and breaker threshold must not be negative")
	}
	return cfg, nil
}

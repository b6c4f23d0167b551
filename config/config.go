package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the bot, the web server and the daemon.
type Config struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	BotToken string `mapstructure:"bot_token"`
	HTTPPort string `mapstructure:"http_port"`

	Scraper ScraperConfig `mapstructure:"scraper"`
	Poll    PollConfig    `mapstructure:"poll"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
	Github  GithubConfig  `mapstructure:"github"`
	Google  GoogleConfig  `mapstructure:"google"`
}

type ScraperConfig struct {
	// Fetcher is "http" or "playwright".
	Fetcher        string            `mapstructure:"fetcher"`
	UserAgent      string            `mapstructure:"user_agent"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	BookingsKey    string            `mapstructure:"bookings_key"`
	Constructor    string            `mapstructure:"constructor"`
	ScriptIndex    int               `mapstructure:"script_index"`
	URLs           map[string]string `mapstructure:"urls"`
}

type PollConfig struct {
	// Policy is "fail-fast" or "best-effort".
	Policy     string `mapstructure:"policy"`
	MaxOptions int    `mapstructure:"max_options"`
	MaxDays    int    `mapstructure:"max_days"`
}

type DaemonConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Days      int           `mapstructure:"days"`
	ICSPath   string        `mapstructure:"ics_path"`
	TimeRange string        `mapstructure:"timerange"`
	MinHours  string        `mapstructure:"minduration"`
}

type GithubConfig struct {
	Token string `mapstructure:"token"`
	Repo  string `mapstructure:"repo"`
	Path  string `mapstructure:"path"`
}

type GoogleConfig struct {
	CalendarID      string `mapstructure:"calendar_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Environment variables that override config file keys.
var envBindings = map[string]string{
	"env":                     "ENV",
	"log_level":               "LOG_LEVEL",
	"bot_token":               "BOT_TOKEN",
	"http_port":               "HTTP_PORT",
	"scraper.fetcher":         "SCRAPER_FETCHER",
	"poll.policy":             "POLL_POLICY",
	"github.token":            "GITHUB_TOKEN",
	"github.repo":             "GITHUB_REPO",
	"github.path":             "GITHUB_PATH",
	"google.calendar_id":      "GOOGLE_CALENDAR_ID",
	"google.credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", "8100")

	v.SetDefault("scraper.fetcher", "http")
	v.SetDefault("scraper.request_timeout", 30*time.Second)
	v.SetDefault("scraper.bookings_key", "events")
	v.SetDefault("scraper.constructor", "Date")
	v.SetDefault("scraper.script_index", -1)

	v.SetDefault("poll.policy", "fail-fast")
	v.SetDefault("poll.max_options", 10)
	v.SetDefault("poll.max_days", 14)

	v.SetDefault("daemon.interval", 30*time.Minute)
	v.SetDefault("daemon.days", 7)
	v.SetDefault("daemon.ics_path", "availability.ics")
	v.SetDefault("github.path", "availability.ics")
}

// LoadConfig reads filename, or searches for config.json in . and ./config
// when filename is empty. Finding no file during the search is not an error;
// defaults and the environment still apply. A .env file in the working
// directory is loaded first.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Scraper.Fetcher) {
	case "http", "playwright":
	default:
		errs = append(errs, fmt.Errorf("scraper.fetcher must be http or playwright, got %q", c.Scraper.Fetcher))
	}
	switch c.Poll.Policy {
	case "fail-fast", "best-effort":
	default:
		errs = append(errs, fmt.Errorf("poll.policy must be fail-fast or best-effort, got %q", c.Poll.Policy))
	}
	if c.Scraper.RequestTimeout <= 0 {
		errs = append(errs, errors.New("scraper.request_timeout must be positive"))
	}
	if c.Poll.MaxOptions < 2 {
		errs = append(errs, errors.New("poll.max_options must be at least 2"))
	}
	if c.Poll.MaxDays < 1 {
		errs = append(errs, errors.New("poll.max_days must be at least 1"))
	}
	if c.Daemon.Interval < time.Minute {
		errs = append(errs, errors.New("daemon.interval must be at least a minute"))
	}
	if c.Daemon.Days < 1 {
		errs = append(errs, errors.New("daemon.days must be at least 1"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the process runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

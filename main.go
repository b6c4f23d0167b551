package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"goodminton/config"
	"goodminton/courts"
	"goodminton/logger"
	"goodminton/poll"
	"goodminton/scraper"
)

const usage = `Usage: goodminton [flags] <mode> [poll arguments]

Modes:
  bot      answer /hello, /help and /poll on Telegram
  serve    serve the availability API over HTTP
  daemon   publish upcoming availability as an iCalendar feed on a schedule
  once     print availability for the given arguments and exit,
           e.g. goodminton once dates=2024-08-16:2024-08-20 location=clayton

Flags:
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, policy, fetcher string

	flagSet := pflag.NewFlagSet("goodminton", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to config file (default: search for config.json)")
	flagSet.StringVar(&policy, "policy", "", "failure policy: fail-fast or best-effort (overrides poll.policy)")
	flagSet.StringVar(&fetcher, "fetcher", "", "page fetcher: http or playwright (overrides scraper.fetcher)")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return errors.New("no mode given")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if policy != "" {
		cfg.Poll.Policy = policy
	}
	if fetcher != "" {
		cfg.Scraper.Fetcher = fetcher
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.Init(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, closeRunner, err := newRunner(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRunner(); err != nil {
			log.Warn("Failed to shut down fetcher", zap.Error(err))
		}
	}()

	switch mode := args[0]; mode {
	case "bot":
		return runBot(ctx, cfg, runner, log)
	case "serve":
		return startServer(ctx, cfg, runner, log)
	case "daemon":
		return runDaemon(ctx, cfg, runner, log)
	case "once":
		return runOnce(ctx, cfg, runner, args[1:])
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, usage)
	flagSet.PrintDefaults()
}

// newRunner wires the configured fetcher into a scraper and a poll runner.
// The returned function releases the fetcher.
func newRunner(cfg *config.Config, log *zap.Logger) (*poll.Runner, func() error, error) {
	policy, err := poll.ParsePolicy(cfg.Poll.Policy)
	if err != nil {
		return nil, nil, err
	}

	var (
		fetcher scraper.Fetcher
		closer  = func() error { return nil }
	)
	switch cfg.Scraper.Fetcher {
	case "playwright":
		pf, stop, err := scraper.StartPlaywright()
		if err != nil {
			return nil, nil, err
		}
		pf.Timeout = float64(cfg.Scraper.RequestTimeout.Milliseconds())
		fetcher, closer = pf, stop
	default:
		fetcher = scraper.NewHTTPFetcher(cfg.Scraper.RequestTimeout, cfg.Scraper.UserAgent)
	}

	s := scraper.New(fetcher, log.Named("scraper"))
	s.BookingsKey = cfg.Scraper.BookingsKey
	s.Constructor = cfg.Scraper.Constructor
	s.ScriptIndex = cfg.Scraper.ScriptIndex
	for name, url := range cfg.Scraper.URLs {
		loc, err := courts.ParseLocation(name)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("scraper.urls: %w", err)
		}
		s.URLs[loc] = url
	}

	return &poll.Runner{Source: s, Policy: policy, Logger: log.Named("poll")}, closer, nil
}

func runOnce(ctx context.Context, cfg *config.Config, runner *poll.Runner, args []string) error {
	req, err := poll.ParseArgs(strings.Join(args, " "), cfg.Poll.MaxDays)
	if err != nil {
		return err
	}
	summaries, err := runner.Run(ctx, req)
	if err != nil && summaries == nil {
		return err
	}
	for _, unitErr := range poll.UnitErrors(err) {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", unitErr)
	}
	if len(summaries) == 0 {
		fmt.Println("There are no options which match your query.")
		return nil
	}
	for _, s := range summaries {
		fmt.Println(s)
	}
	return nil
}

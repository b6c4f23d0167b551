package main

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"goodminton/bot"
	"goodminton/config"
	"goodminton/poll"
)

func runBot(ctx context.Context, cfg *config.Config, runner *poll.Runner, log *zap.Logger) error {
	if cfg.BotToken == "" {
		return errors.New("bot_token (BOT_TOKEN) is required in bot mode")
	}
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("error connecting to Telegram: %w", err)
	}
	api.Debug = !cfg.IsProduction() && cfg.LogLevel == "debug"

	b := bot.New(api, runner, cfg.Poll.MaxOptions, cfg.Poll.MaxDays, log.Named("bot"))
	if err := b.Listen(ctx, api); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"goodminton/courts"
	applog "goodminton/logger"
	"goodminton/poll"
)

const (
	PollQuestion = "Which booking(s) are you available for?"
	NoOptions    = "There are no options which match your query."
	Greeting     = "🏸🏸🏸🏸🏸🏸"

	usage = "Usage: /poll dates=YYYY-MM-DD:YYYY-MM-DD [location=clayton|caulfield] " +
		"[timerange=HH:MM-HH:MM] [minduration=HOURS]\n" +
		"e.g. /poll dates=2024-08-16:2024-08-20 timerange=17:00- minduration=1"
)

// Sender delivers messages and polls. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Runner answers availability requests. *poll.Runner implements it.
type Runner interface {
	Run(ctx context.Context, req *poll.Request) ([]courts.AvailabilitySummary, error)
}

// Bot answers /hello, /help and /poll.
type Bot struct {
	Sender     Sender
	Runner     Runner
	MaxOptions int
	MaxDays    int
	Logger     *zap.Logger
}

func New(sender Sender, runner Runner, maxOptions, maxDays int, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = applog.Get()
	}
	return &Bot{Sender: sender, Runner: runner, MaxOptions: maxOptions, MaxDays: maxDays, Logger: logger}
}

// Listen long-polls Telegram until ctx is done.
func (b *Bot) Listen(ctx context.Context, api *tgbotapi.BotAPI) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	b.Logger.Info("Listening for updates", zap.String("bot", api.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			if update.Message == nil {
				continue
			}
			if err := b.HandleMessage(ctx, update.Message); err != nil {
				b.Logger.Error("Failed to handle message",
					zap.Int64("chat", update.Message.Chat.ID), zap.String("text", update.Message.Text), zap.Error(err))
			}
		}
	}
}

// HandleMessage dispatches one message. Errors are returned only when
// Telegram itself could not be reached.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return nil
	}
	switch msg.Command() {
	case "hello":
		return b.reply(msg, Greeting)
	case "help", "start":
		return b.reply(msg, usage)
	case "poll":
		return b.handlePoll(ctx, msg)
	}
	return nil
}

func (b *Bot) handlePoll(ctx context.Context, msg *tgbotapi.Message) error {
	b.Logger.Info("Received poll request", zap.Int64("chat", msg.Chat.ID), zap.String("text", msg.Text))

	req, err := poll.ParseArgs(msg.Text, b.MaxDays)
	if err != nil {
		return b.reply(msg, fmt.Sprintf("An error occurred when trying to parse your arguments: %v\n\n%s", err, usage))
	}

	summaries, err := b.Runner.Run(ctx, req)
	if err != nil && summaries == nil {
		return b.reply(msg, fmt.Sprintf("An error occurred when reading the booking pages: %v", err))
	}
	if err != nil {
		var skipped []string
		for _, unitErr := range poll.UnitErrors(err) {
			skipped = append(skipped, fmt.Sprintf("%s on %s", unitErr.Location, courts.FormatDate(unitErr.Date)))
		}
		if rerr := b.reply(msg, "Some pages could not be read and were skipped: "+strings.Join(skipped, ", ")); rerr != nil {
			return rerr
		}
	}

	return b.sendOptions(msg.Chat.ID, summaries)
}

func (b *Bot) sendOptions(chatID int64, summaries []courts.AvailabilitySummary) error {
	switch len(summaries) {
	case 0:
		return b.send(tgbotapi.NewMessage(chatID, NoOptions))
	case 1:
		return b.send(tgbotapi.NewMessage(chatID, "There is only one option: "+summaries[0].String()))
	}

	for _, options := range poll.Options(summaries, b.MaxOptions) {
		if len(options) == 1 {
			if err := b.send(tgbotapi.NewMessage(chatID, "There is also: "+options[0])); err != nil {
				return err
			}
			continue
		}
		p := tgbotapi.NewPoll(chatID, PollQuestion, options...)
		p.IsAnonymous = false
		p.AllowsMultipleAnswers = true
		if err := b.send(p); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) error {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	return b.send(m)
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.Sender.Send(c); err != nil {
		return fmt.Errorf("error sending to Telegram: %w", err)
	}
	return nil
}

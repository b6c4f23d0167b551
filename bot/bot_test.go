package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"goodminton/courts"
	"goodminton/poll"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

type stubRunner struct {
	summaries []courts.AvailabilitySummary
	err       error
	calls     int
}

func (s *stubRunner) Run(context.Context, *poll.Request) ([]courts.AvailabilitySummary, error) {
	s.calls++
	return s.summaries, s.err
}

func command(text string) *tgbotapi.Message {
	name, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Message{
		MessageID: 42,
		Chat:      &tgbotapi.Chat{ID: 7},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func summaries(n int) []courts.AvailabilitySummary {
	out := make([]courts.AvailabilitySummary, n)
	for i := range out {
		out[i] = courts.AvailabilitySummary{
			Location:    courts.Caulfield,
			Date:        time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC),
			Start:       courts.TimeOfDay{Hour: 8 + i},
			Courts:      1,
			MaxDuration: 1,
			MinDuration: 1,
		}
	}
	return out
}

func handle(t *testing.T, runner *stubRunner, text string) *fakeSender {
	t.Helper()
	sender := &fakeSender{}
	b := New(sender, runner, 10, 14, nil)
	if err := b.HandleMessage(context.Background(), command(text)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sender
}

func messageText(t *testing.T, c tgbotapi.Chattable) tgbotapi.MessageConfig {
	t.Helper()
	m, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected a message, got %T", c)
	}
	return m
}

func TestHello(t *testing.T) {
	sender := handle(t, &stubRunner{}, "/hello")
	m := messageText(t, sender.sent[0])
	if m.Text != Greeting || m.ReplyToMessageID != 42 {
		t.Fatalf("unexpected reply %+v", m)
	}
}

func TestHelp(t *testing.T) {
	sender := handle(t, &stubRunner{}, "/help")
	if m := messageText(t, sender.sent[0]); !strings.Contains(m.Text, "dates=") {
		t.Fatalf("unexpected help %q", m.Text)
	}
}

func TestIgnoresPlainText(t *testing.T) {
	sender := &fakeSender{}
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}, Text: "hello"}
	if err := New(sender, &stubRunner{}, 10, 14, nil).HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected silence, got %d messages", len(sender.sent))
	}
}

func TestPollNoOptions(t *testing.T) {
	sender := handle(t, &stubRunner{}, "/poll dates=2024-08-16")
	if m := messageText(t, sender.sent[0]); m.Text != NoOptions {
		t.Fatalf("unexpected message %q", m.Text)
	}
}

func TestPollOneOption(t *testing.T) {
	sender := handle(t, &stubRunner{summaries: summaries(1)}, "/poll dates=2024-08-16")
	want := "There is only one option: Caulfield on 16 August from 08:00 am (1 courts, up to 1.0 hours)"
	if m := messageText(t, sender.sent[0]); m.Text != want {
		t.Fatalf("expected %q, got %q", want, m.Text)
	}
}

func TestPollManyOptions(t *testing.T) {
	sender := handle(t, &stubRunner{summaries: summaries(12)}, "/poll@goodminton_bot dates=2024-08-16")
	if len(sender.sent) != 2 {
		t.Fatalf("expected two polls, got %d", len(sender.sent))
	}
	total := 0
	for _, c := range sender.sent {
		p, ok := c.(tgbotapi.SendPollConfig)
		if !ok {
			t.Fatalf("expected a poll, got %T", c)
		}
		if p.Question != PollQuestion || p.IsAnonymous || !p.AllowsMultipleAnswers || p.ChatID != 7 {
			t.Fatalf("unexpected poll %+v", p)
		}
		if len(p.Options) < 2 || len(p.Options) > 10 {
			t.Fatalf("poll has %d options", len(p.Options))
		}
		total += len(p.Options)
	}
	if total != 12 {
		t.Fatalf("expected 12 options in total, got %d", total)
	}
}

func TestPollBadArguments(t *testing.T) {
	runner := &stubRunner{}
	sender := handle(t, runner, "/poll location=clayton")
	m := messageText(t, sender.sent[0])
	if !strings.Contains(m.Text, "dates") || m.ReplyToMessageID != 42 {
		t.Fatalf("unexpected reply %+v", m)
	}
	if runner.calls != 0 {
		t.Fatal("runner should not run on bad arguments")
	}
}

func TestPollScrapeFailure(t *testing.T) {
	runner := &stubRunner{err: courts.FormatMismatch("odd instants", nil)}
	sender := handle(t, runner, "/poll dates=2024-08-16")
	if m := messageText(t, sender.sent[0]); !strings.Contains(m.Text, "format mismatch") {
		t.Fatalf("unexpected reply %q", m.Text)
	}
}

func TestPollPartial(t *testing.T) {
	date := time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC)
	runner := &stubRunner{
		summaries: summaries(3),
		err:       errors.Join(&poll.UnitError{Location: courts.Clayton, Date: date, Err: errors.New("timeout")}),
	}
	sender := handle(t, runner, "/poll dates=2024-08-16:2024-08-17")
	if len(sender.sent) != 2 {
		t.Fatalf("expected a warning and a poll, got %d", len(sender.sent))
	}
	if m := messageText(t, sender.sent[0]); !strings.Contains(m.Text, "Clayton on 17 August") {
		t.Fatalf("unexpected warning %q", m.Text)
	}
	if _, ok := sender.sent[1].(tgbotapi.SendPollConfig); !ok {
		t.Fatalf("expected a poll, got %T", sender.sent[1])
	}
}

func TestSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("forbidden")}
	err := New(sender, &stubRunner{}, 10, 14, nil).HandleMessage(context.Background(), command("/hello"))
	if err == nil || !strings.Contains(err.Error(), "forbidden") {
		t.Fatalf("expected the send error, got %v", err)
	}
}

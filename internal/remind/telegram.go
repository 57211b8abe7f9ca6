package remind

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var retryDelays = []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}

// TelegramNotifier delivers reminders over the Telegram Bot API. Sends are
// rate limited below Telegram's broadcast ceiling and retried with backoff,
// except when the client has blocked the bot.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewTelegramNotifier connects to the Bot API with the given token.
// messagesPerSecond caps the send rate; values <= 0 default to 20.
func NewTelegramNotifier(token string, messagesPerSecond float64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	if messagesPerSecond <= 0 {
		messagesPerSecond = 20
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier connected")
	return &TelegramNotifier{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), 30),
		logger:  logger,
	}, nil
}

// SendReminder sends the reminder message for one session.
func (n *TelegramNotifier) SendReminder(ctx context.Context, s Session) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	msg := tgbotapi.NewMessage(s.ChatID, reminderText(s))

	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		_, err := n.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		if tgErr, ok := err.(*tgbotapi.Error); ok {
			switch tgErr.Code {
			case 403:
				// Bot blocked by the client. No point retrying.
				n.logger.Info().Int64("chat_id", s.ChatID).Msg("client blocked bot")
				return fmt.Errorf("client blocked bot: %w", err)
			case 429:
				wait := time.Duration(tgErr.RetryAfter) * time.Second
				if wait == 0 && attempt < len(retryDelays) {
					wait = retryDelays[attempt]
				}
				n.logger.Warn().Dur("retry_after", wait).Msg("telegram rate limit hit")
				select {
				case <-time.After(wait):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		if attempt < len(retryDelays) {
			select {
			case <-time.After(retryDelays[attempt]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("send after retries: %w", lastErr)
}

func reminderText(s Session) string {
	where := "Room: " + s.RoomName
	if s.Online {
		where = "Format: online session"
	}
	return fmt.Sprintf(
		"Hi %s! This is a reminder about your session with %s on %s at %s.\n%s\n\nIf you need to reschedule, please contact the clinic.",
		s.ClientName,
		s.PractitionerName,
		s.Start.Format("Monday, 2 January"),
		s.Start.Format("15:04"),
		where,
	)
}

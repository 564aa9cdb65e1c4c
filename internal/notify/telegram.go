package notify

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"allusion/internal/odds"
	"allusion/internal/pkg/models"
)

// Min interval between messages to the same chat to stay under Telegram's
// rate limit (~30 messages/min).
const sendInterval = 2 * time.Second

// TelegramNotifier sends one message per detected arbitrage row.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier builds the notifier, or nil when the bot cannot be
// reached (alerts are best-effort, the scanner keeps running without them).
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("Failed to get telegram bot info", "error", err)
		return nil
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// NotifyArbitrage sends an alert per row, pacing sends to the rate limit.
func (n *TelegramNotifier) NotifyArbitrage(rows []models.ArbitrageRow) {
	if n == nil {
		return
	}
	for i := range rows {
		n.send(formatArbitrage(&rows[i]))
	}
}

func (n *TelegramNotifier) send(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := sendInterval - time.Since(n.lastSend); wait > 0 {
		time.Sleep(wait)
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		slog.Warn("Failed to send telegram alert", "error", err)
		return
	}
	n.lastSend = time.Now()
}

func formatArbitrage(row *models.ArbitrageRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 <b>Arbitrage found</b>\n")
	fmt.Fprintf(&b, "%s / %s / %s\n", row.Sport, row.Country, row.League)
	fmt.Fprintf(&b, "<b>%s</b>", row.Match)
	if !row.MatchTime.IsZero() {
		fmt.Fprintf(&b, " — %s", row.MatchTime.Format("Mon 02 Jan 15:04"))
	}
	b.WriteString("\n\n")

	outcomes := make([]string, 0, len(row.Best))
	for outcome := range row.Best {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		price := row.Best[models.Outcome(outcome)]
		fmt.Fprintf(&b, "%s: <b>%.2f</b> @ %s\n", outcome, price.Odds, price.Book)
	}

	fmt.Fprintf(&b, "\nreciprocal sum: %.4f\n", row.ReciprocalSum)
	fmt.Fprintf(&b, "guaranteed profit: %.2f%%", odds.Profit(*row)*100)
	return b.String()
}

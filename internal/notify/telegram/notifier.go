// Package telegram posts new jobs to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/notify"
)

var _ notify.Notifier = (*Notifier)(nil)

// Sender is the part of *tgbotapi.BotAPI used to deliver messages
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends one MarkdownV2 message per job
type Notifier struct {
	sender  Sender
	chatID  int64
	siteURL *url.URL
}

// New connects a bot with token. siteURL resolves relative job links.
func New(token string, chatID int64, siteURL string) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}
	return NewWithSender(api, chatID, siteURL)
}

// NewWithSender builds a notifier over an existing sender
func NewWithSender(sender Sender, chatID int64, siteURL string) (*Notifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("telegram: sender is required")
	}
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("telegram: parse site url: %w", err)
	}
	return &Notifier{sender: sender, chatID: chatID, siteURL: base}, nil
}

func (n *Notifier) Name() string {
	return "telegram"
}

// Notify stops at the first message that fails to send
func (n *Notifier) Notify(ctx context.Context, listing domain.Listing, jobs []domain.Job) error {
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(n.chatID, n.format(listing, j))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.DisableWebPagePreview = true

		if _, err := n.sender.Send(msg); err != nil {
			return fmt.Errorf("telegram: send %q: %w", j.Title, err)
		}
	}
	return nil
}

func (n *Notifier) format(listing domain.Listing, j domain.Job) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🆕 *%s*\n", escapeMarkdown(j.Title))
	fmt.Fprintf(&b, "🏛 %s\n", escapeMarkdown(orNA(j.Institution)))
	fmt.Fprintf(&b, "📂 %s · %s\n", escapeMarkdown(orNA(j.Domain)), escapeMarkdown(orNA(j.Grade)))
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(orNA(j.Location)))
	fmt.Fprintf(&b, "⏳ %s\n", escapeMarkdown(orNA(j.Deadline)))
	if listing.Name != "" {
		fmt.Fprintf(&b, "🔖 %s\n", escapeMarkdown(listing.Name))
	}
	fmt.Fprintf(&b, "🔗 [View job](%s)", escapeLink(n.link(j.Href)))

	return b.String()
}

func (n *Notifier) link(href string) string {
	ref, err := url.Parse(href)
	if err != nil || n.siteURL == nil {
		return href
	}
	return n.siteURL.ResolveReference(ref).String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// inside (...) MarkdownV2 only reserves ')' and '\'
func escapeLink(link string) string {
	return strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(link)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

package clientsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LogSink writes alerts to a structured logger
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a log sink; nil uses slog.Default
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

// Deliver implements Sink
func (s *LogSink) Deliver(ctx context.Context, a Alert) error {
	attrs := []any{
		"notification_id", a.NotificationID,
		"type", a.Type,
		"priority", a.Priority,
		"title", a.Title,
		"message", a.Message,
		"sound", a.Sound,
	}
	if a.Urgent {
		attrs = append(attrs, "countdown", a.Countdown.Round(time.Second), "deadline", a.Deadline)
	}
	level := slog.LevelInfo
	if a.Priority == PriorityHigh {
		level = slog.LevelWarn
	}
	s.log.Log(ctx, level, LogMsgAlertDelivered, attrs...)
	return nil
}

// embedSender is the part of *discordgo.Session the Discord sink needs
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSink posts alerts as embeds to a channel
type DiscordSink struct {
	sender    embedSender
	channelID string
}

// NewDiscordSink creates a bot session for posting alerts. Only REST calls are
// made, so the gateway is never opened.
func NewDiscordSink(token, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordSink{sender: session, channelID: channelID}, nil
}

// Deliver implements Sink
func (s *DiscordSink) Deliver(_ context.Context, a Alert) error {
	_, err := s.sender.ChannelMessageSendEmbed(s.channelID, alertEmbed(a))
	return err
}

func alertEmbed(a Alert) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       a.Title,
		Description: a.Message,
		Color:       colorNormal,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: label(string(a.Type)), Inline: true},
			{Name: "Priority", Value: label(string(a.Priority)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("notification #%d", a.NotificationID)},
	}
	switch a.Priority {
	case PriorityHigh:
		embed.Color = colorHigh
	case PriorityMedium:
		embed.Color = colorMedium
	}
	if a.Urgent {
		embed.Title = "Claim now: " + a.Title
		embed.Timestamp = a.Deadline.UTC().Format(time.RFC3339)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Time left",
			Value:  a.Countdown.Round(time.Second).String(),
			Inline: true,
		})
	}
	return embed
}

// label turns a snake_case identifier into embed text: claim_ready -> Claim Ready.
// Casers are stateful, so each call gets its own.
func label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

package discord

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/bwmarrin/discordgo"
)

const (
	ActionSendMessage = "send_message"
	ActionSendEmbed   = "send_embed"
)

type SendMessageParams struct {
	ChannelID   string `json:"channelId"`
	Content     string `json:"content"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Connector sends messages through the Discord REST API with a bot token.
// No gateway connection is opened.
type Connector struct {
	session *discordgo.Session
	domain.ConnectorActions
}

func NewConnector(botToken string) (*Connector, error) {
	session, err := discordgo.New(fmt.Sprintf("Bot %s", botToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	c := &Connector{session: session}

	c.ConnectorActions = domain.ConnectorActions{
		ActionSendMessage: c.SendMessage,
		ActionSendEmbed:   c.SendEmbed,
	}

	return c, nil
}

func (c *Connector) SendMessage(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p SendMessageParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.ChannelID == "" || p.Content == "" {
		return nil, fmt.Errorf("discord messages require channelId and content")
	}

	message, err := c.session.ChannelMessageSend(p.ChannelID, p.Content, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send discord message: %w", err)
	}

	return domain.Payload{
		"messageId": message.ID,
		"channelId": message.ChannelID,
	}, nil
}

func (c *Connector) SendEmbed(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p SendMessageParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.ChannelID == "" || p.Title == "" {
		return nil, fmt.Errorf("discord embeds require channelId and title")
	}

	message, err := c.session.ChannelMessageSendEmbed(p.ChannelID, &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send discord embed: %w", err)
	}

	return domain.Payload{
		"messageId": message.ID,
		"channelId": message.ChannelID,
	}, nil
}

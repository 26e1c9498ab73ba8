package slack

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/slack-go/slack"
)

const (
	ActionSendMessage = "send_message"
	ActionSendReply   = "send_reply"
	ActionAddReaction = "add_reaction"
)

type SendMessageParams struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"threadTs"`
}

type AddReactionParams struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
	Reaction  string `json:"reaction"`
}

// Connector posts to Slack with a bot token.
type Connector struct {
	client *slack.Client
	domain.ConnectorActions
}

type Config struct {
	Token string
	// APIURL overrides the Slack endpoint, it must end with a slash.
	APIURL string
}

func NewConnector(config Config) *Connector {
	var opts []slack.Option
	if config.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(config.APIURL))
	}

	c := &Connector{
		client: slack.New(config.Token, opts...),
	}

	c.ConnectorActions = domain.ConnectorActions{
		ActionSendMessage: c.SendMessage,
		ActionSendReply:   c.SendMessage,
		ActionAddReaction: c.AddReaction,
	}

	return c
}

func (c *Connector) SendMessage(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p SendMessageParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.Channel == "" || p.Text == "" {
		return nil, fmt.Errorf("slack messages require channel and text")
	}

	opts := []slack.MsgOption{slack.MsgOptionText(p.Text, false)}
	if p.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(p.ThreadTS))
	}

	channel, ts, err := c.client.PostMessageContext(ctx, p.Channel, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to post slack message: %w", err)
	}

	return domain.Payload{
		"channel":   channel,
		"timestamp": ts,
	}, nil
}

func (c *Connector) AddReaction(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p AddReactionParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	err := c.client.AddReactionContext(ctx, p.Reaction, slack.ItemRef{
		Channel:   p.Channel,
		Timestamp: p.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add slack reaction: %w", err)
	}

	return domain.Payload{
		"channel":  p.Channel,
		"reaction": p.Reaction,
	}, nil
}

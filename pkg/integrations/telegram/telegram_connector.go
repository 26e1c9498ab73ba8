package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/agencyflow/agencyflow/pkg/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const ActionSendMessage = "send_message"

type SendMessageParams struct {
	ChatID    int64  `json:"chatId"`
	Text      string `json:"text"`
	ParseMode string `json:"parseMode"`
}

// Connector sends messages with the Telegram Bot API. The bot is created on
// first use because creating it calls getMe.
type Connector struct {
	token string

	once    sync.Once
	bot     *tgbotapi.BotAPI
	initErr error

	domain.ConnectorActions
}

func NewConnector(botToken string) *Connector {
	c := &Connector{token: botToken}

	c.ConnectorActions = domain.ConnectorActions{
		ActionSendMessage: c.SendMessage,
	}

	return c
}

func (c *Connector) getBot() (*tgbotapi.BotAPI, error) {
	c.once.Do(func() {
		c.bot, c.initErr = tgbotapi.NewBotAPI(c.token)
	})

	if c.initErr != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", c.initErr)
	}

	return c.bot, nil
}

func (c *Connector) SendMessage(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p SendMessageParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.ChatID == 0 || p.Text == "" {
		return nil, fmt.Errorf("telegram messages require chatId and text")
	}

	bot, err := c.getBot()
	if err != nil {
		return nil, err
	}

	msg := tgbotapi.NewMessage(p.ChatID, p.Text)
	if p.ParseMode != "" {
		msg.ParseMode = p.ParseMode
	}

	sent, err := bot.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send telegram message: %w", err)
	}

	return domain.Payload{
		"messageId": float64(sent.MessageID),
		"chatId":    float64(p.ChatID),
	}, nil
}

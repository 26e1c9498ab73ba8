package email

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers emails through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

type ResendSenderOptions struct {
	APIKey string
	From   string
}

func NewResendSender(opts ResendSenderOptions) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(opts.APIKey),
		from:   opts.From,
	}
}

func (s *ResendSender) SendEmail(ctx context.Context, message domain.EmailMessage) (string, error) {
	request := &resend.SendEmailRequest{
		From:    s.from,
		To:      message.To,
		Subject: message.Subject,
	}

	if message.Template != "" {
		request.Html = message.Body
	} else {
		request.Text = message.Body
	}

	response, err := s.client.Emails.SendWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to send email via resend: %w", err)
	}

	return response.Id, nil
}

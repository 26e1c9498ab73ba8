package stripe

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

const (
	ActionCreateCustomer      = "create_customer"
	ActionCreatePaymentIntent = "create_payment_intent"
)

type CreateCustomerParams struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

type CreatePaymentIntentParams struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Customer    string `json:"customer"`
	Description string `json:"description"`
}

// Connector creates customers and payment intents. stripe-go keeps its key
// in a package variable, so one secret key is used per process.
type Connector struct {
	domain.ConnectorActions
}

func NewConnector(secretKey string) *Connector {
	stripe.Key = secretKey

	c := &Connector{}

	c.ConnectorActions = domain.ConnectorActions{
		ActionCreateCustomer:      c.CreateCustomer,
		ActionCreatePaymentIntent: c.CreatePaymentIntent,
	}

	return c
}

func (c *Connector) CreateCustomer(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p CreateCustomerParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	customerParams := &stripe.CustomerParams{}
	customerParams.Context = ctx

	if p.Email != "" {
		customerParams.Email = stripe.String(p.Email)
	}
	if p.Name != "" {
		customerParams.Name = stripe.String(p.Name)
	}
	if p.Phone != "" {
		customerParams.Phone = stripe.String(p.Phone)
	}
	if p.Description != "" {
		customerParams.Description = stripe.String(p.Description)
	}

	cust, err := customer.New(customerParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return domain.Payload{
		"customerId": cust.ID,
		"email":      cust.Email,
	}, nil
}

func (c *Connector) CreatePaymentIntent(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p CreatePaymentIntentParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.Amount <= 0 || p.Currency == "" {
		return nil, fmt.Errorf("payment intents require a positive amount and a currency")
	}

	intentParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
	}
	intentParams.Context = ctx

	if p.Customer != "" {
		intentParams.Customer = stripe.String(p.Customer)
	}
	if p.Description != "" {
		intentParams.Description = stripe.String(p.Description)
	}

	intent, err := paymentintent.New(intentParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return domain.Payload{
		"paymentIntentId": intent.ID,
		"status":          string(intent.Status),
		"clientSecret":    intent.ClientSecret,
	}, nil
}

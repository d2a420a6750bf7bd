package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailSender is the part of the Resend client used to send receipts.
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var receiptTemplate = template.Must(template.New("receipt").Parse(
	`<p>Your agent <strong>{{.AgentID}}</strong> bought <strong>{{.ItemName}}</strong> for {{.Amount}}.</p>
<p>Settlement reference: <code>{{.SettlementReference}}</code> on {{.Network}}</p>
<p>Purchase ID: {{.PurchaseID}}</p>`))

// EmailPublisher sends a receipt email for each recorded purchase.
type EmailPublisher struct {
	sender    EmailSender
	fromEmail string
	fromName  string
	to        []string
	logger    *zap.Logger
}

// NewEmailPublisher creates a receipt publisher using the Resend API.
func NewEmailPublisher(apiKey, fromEmail, fromName string, to []string) *EmailPublisher {
	return NewEmailPublisherWithSender(resend.NewClient(apiKey).Emails, fromEmail, fromName, to)
}

// NewEmailPublisherWithSender creates a receipt publisher over an explicit sender.
func NewEmailPublisherWithSender(sender EmailSender, fromEmail, fromName string, to []string) *EmailPublisher {
	return &EmailPublisher{
		sender:    sender,
		fromEmail: fromEmail,
		fromName:  fromName,
		to:        to,
		logger:    logger.Log,
	}
}

func (p *EmailPublisher) Publish(_ context.Context, event PurchaseEvent) error {
	html, err := renderReceipt(event)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", p.fromName, p.fromEmail),
		To:      p.to,
		Subject: fmt.Sprintf("Receipt: %s", event.ItemName),
		Html:    html,
		Headers: map[string]string{
			"X-Entity-Ref-ID": event.PurchaseID,
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "purchase_receipt"},
		},
	}

	sent, err := p.sender.Send(params)
	if err != nil {
		p.logger.Error("failed to send receipt email",
			zap.Error(err),
			zap.String("purchase_id", event.PurchaseID))
		return fmt.Errorf("failed to send email: %w", err)
	}

	p.logger.Info("receipt email sent",
		zap.String("email_id", sent.Id),
		zap.String("purchase_id", event.PurchaseID))
	return nil
}

func renderReceipt(event PurchaseEvent) (string, error) {
	data := struct {
		PurchaseEvent
		Amount string
	}{
		PurchaseEvent: event,
		Amount:        FormatMoney(event.AmountCents, event.Currency),
	}
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.String(), nil
}

// FormatMoney formats an amount in minor units, e.g. 25000 USD as "$250.00".
func FormatMoney(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

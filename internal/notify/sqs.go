package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"go.uber.org/zap"
)

// SQSAPI is the part of the SQS client used to publish events.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends purchase events to an SQS queue.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger
}

// NewSQSPublisher creates a publisher for queueURL
func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.Log,
	}
}

func (p *SQSPublisher) Publish(ctx context.Context, event PurchaseEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"EventType": {
				StringValue: aws.String(event.Type),
				DataType:    aws.String("String"),
			},
			"SettlementReference": {
				StringValue: aws.String(event.SettlementReference),
				DataType:    aws.String("String"),
			},
			"Network": {
				StringValue: aws.String(event.Network),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	p.logger.Debug("Purchase event queued",
		zap.String("purchase_id", event.PurchaseID),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

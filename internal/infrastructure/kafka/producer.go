// Package kafka adapts the broker clients to the worker contracts.
// Both ledgers use the same adapters, each against its own topic.
package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ordersaga/internal/worker/outbox"
	"ordersaga/pkg/kafka/producer"
)

// EventProducer publishes outbox records keyed by order id, so all
// events of one order land on one partition and arrive in order.
type EventProducer struct {
	*producer.Producer
	topic string
}

var _ outbox.Sender = (*EventProducer)(nil)

func NewEventProducer(producer *producer.Producer, topic string) *EventProducer {
	return &EventProducer{
		producer,
		topic,
	}
}

func (ep *EventProducer) SendEvents(ctx context.Context, events []*outbox.Event) error {
	var msgsToSend []kafka.Message

	for _, event := range events {
		msg := kafka.Message{
			Topic: ep.topic,
			Key:   []byte(event.OrderID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(event.ID.String())},
			},
		}
		msgsToSend = append(msgsToSend, msg)
	}

	if len(msgsToSend) == 0 {
		return nil
	}

	err := ep.Writer.WriteMessages(ctx, msgsToSend...)
	if err != nil {
		return fmt.Errorf("EventProducer - SendEvents - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}

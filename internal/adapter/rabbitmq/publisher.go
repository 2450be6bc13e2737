package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-canteen/internal/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ordersExchange = "orders_topic"

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.MessagePublisher {
	return &publisher{conn: conn}
}

// PublishOrderPlaced announces a checkout handoff on the orders topic
// exchange, routed by canteen so displays can subscribe per canteen.
func (p *publisher) PublishOrderPlaced(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare orders exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize order placed message: %w", err)
	}

	key := "orders.placed." + msg.CanteenID
	err = ch.Publish(ordersExchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order placed message: %w", err)
	}
	return nil
}

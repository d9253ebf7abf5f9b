package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DeiVid1337/Boss-Pods-Api/pkg/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher connects to RabbitMQ and declares a topic exchange for
// sale events. Routing key: sale.completed.<store_id>.
func NewAMQPPublisher(eventsConfig *config.EventsConfig) (Publisher, error) {
	conn, err := amqp.Dial(eventsConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		eventsConfig.Exchange, // name
		"topic",               // kind
		true,                  // durable
		false,                 // auto-delete
		false,                 // internal
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &amqpPublisher{conn: conn, ch: ch, exchange: eventsConfig.Exchange}, nil
}

func (p *amqpPublisher) PublishSaleCompleted(ctx context.Context, event SaleCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal sale event: %w", err)
	}

	routingKey := fmt.Sprintf("sale.completed.%d", event.StoreID)

	return p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

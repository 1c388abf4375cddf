package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"traintracker/pkg/sensor"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const contentType = "application/json"

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher sends sensor states to a topic exchange.
type RabbitMQPublisher struct {
	connection *amqp.Connection
	channel    channel
	exchange   string
}

// NewRabbitMQPublisher dials url and declares a durable topic exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	connection, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to rabbitmq: %w", err)
	}

	ch, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("error opening channel: %w", err)
	}

	p, err := newPublisher(ch, exchange)
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	p.connection = connection
	return p, nil
}

func newPublisher(ch channel, exchange string) (*RabbitMQPublisher, error) {
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", exchange, err)
	}
	return &RabbitMQPublisher{channel: ch, exchange: exchange}, nil
}

// Publish sends one state with routing key "sensor.<id>".
func (p *RabbitMQPublisher) Publish(ctx context.Context, state sensor.State) error {
	body, err := Encode(state)
	if err != nil {
		return err
	}

	key := RoutingKey(state.ID)
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: contentType,
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("error publishing %s: %w", key, err)
	}
	log.Debugf("[publish] sent %s to %s", key, p.exchange)
	return nil
}

// Close releases the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	err := p.channel.Close()
	if p.connection != nil {
		if cerr := p.connection.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Encode renders a state as the message body.
func Encode(state sensor.State) ([]byte, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("error encoding state of %s: %w", state.ID, err)
	}
	return body, nil
}

var keyReplacer = strings.NewReplacer(" ", "_", ".", "_", "*", "_", "#", "_")

// RoutingKey derives the topic for a sensor id. Topic separators and wildcards in
// the id are replaced.
func RoutingKey(id string) string {
	return "sensor." + keyReplacer.Replace(strings.ToLower(strings.TrimSpace(id)))
}

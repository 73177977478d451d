package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"family-fund-go/internal/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPBroker fans chat messages out over a direct exchange. The routing
// key is the recipient's profile id, so each subscriber sees only messages
// addressed to it.
type AMQPBroker struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

func NewAMQPBroker(url, exchange string) (*AMQPBroker, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPBroker{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (b *AMQPBroker) Publish(ctx context.Context, msg models.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = b.channel.PublishWithContext(
		ctx,
		b.exchange,     // exchange
		msg.ReceiverId, // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	zap.L().Debug("Published chat message",
		zap.String("message_id", msg.Id),
		zap.String("receiver_id", msg.ReceiverId))
	return nil
}

// Subscribe binds a server-named, auto-deleted queue to the recipient's
// routing key and delivers decoded messages until unsubscribed.
func (b *AMQPBroker) Subscribe(receiverId string, fn func(models.Message)) (func(), error) {
	channel, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open subscriber channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, receiverId, b.exchange, false, nil); err != nil {
		channel.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := channel.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	go func() {
		for delivery := range deliveries {
			var msg models.Message
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				zap.L().Warn("Failed to decode chat message", zap.Error(err))
				continue
			}
			fn(msg)
		}
	}()

	zap.L().Info("Subscribed to chat messages",
		zap.String("receiver_id", receiverId),
		zap.String("queue", queue.Name))

	unsubscribe := func() {
		if err := channel.Close(); err != nil {
			zap.L().Warn("Failed to close subscriber channel", zap.Error(err))
		}
	}
	return unsubscribe, nil
}

func (b *AMQPBroker) Close() error {
	if err := b.channel.Close(); err != nil {
		return fmt.Errorf("close channel: %w", err)
	}
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}
	return nil
}

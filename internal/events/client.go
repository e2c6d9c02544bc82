package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"tally/internal/budget"
)

// Client publishes and consumes tally events over a direct AMQP exchange.
// Two queues hang off the exchange: one for transaction-change messages
// consumed by the mirror worker, one for budget alerts.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	syncQueue    string
	alertQueue   string
}

func NewClient(url, exchangeName, syncQueue, alertQueue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		syncQueue:    syncQueue,
		alertQueue:   alertQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.syncQueue, c.alertQueue} {
		if queue == "" {
			continue
		}
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		// Routing key matches the queue name on a direct exchange.
		err = c.channel.QueueBind(queue, queue, c.exchangeName, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// PublishTransactionChanged publishes a mutation event to the sync queue.
func (c *Client) PublishTransactionChanged(ctx context.Context, id, op string) error {
	body, err := NewTransactionChangedMessage(id, op).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.syncQueue, body); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published transaction change",
		"id", id,
		"op", op,
		"exchange", c.exchangeName,
		"queue", c.syncQueue)
	return nil
}

// PublishBudgetAlert publishes an alert event to the alert queue.
func (c *Client) PublishBudgetAlert(ctx context.Context, alert budget.Alert) error {
	body, err := NewBudgetAlertMessage(alert).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := c.publish(ctx, c.alertQueue, body); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	slog.InfoContext(ctx, "Published budget alert",
		"scope", alert.Scope,
		"level", alert.Level,
		"exchange", c.exchangeName,
		"queue", c.alertQueue)
	return nil
}

// ConsumeTransactionChanges delivers sync-queue messages to handler with
// manual acks. Malformed messages are dropped; handler failures requeue.
func (c *Client) ConsumeTransactionChanges(ctx context.Context, handler func(*TransactionChangedMessage) error) error {
	msgs, err := c.channel.Consume(
		c.syncQueue, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming transaction changes", "queue", c.syncQueue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := TransactionChangedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"id", msg.ID,
					"op", msg.Op)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// AlertPublisher adapts the client to the budget.AlertSink interface.
type AlertPublisher struct {
	client *Client
}

func NewAlertPublisher(client *Client) *AlertPublisher {
	return &AlertPublisher{client: client}
}

// Emit publishes the alert, logging failures instead of propagating them:
// a broken broker must not halt budget evaluation.
func (p *AlertPublisher) Emit(alert budget.Alert) {
	if p.client == nil {
		return
	}
	if err := p.client.PublishBudgetAlert(context.Background(), alert); err != nil {
		slog.Error("Failed to publish budget alert", "scope", alert.Scope, "error", err)
	}
}

package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Client is a thin wrapper around one AMQP channel bound to a single durable
// queue. The server publishes alarm requests and backup messages; the workers
// consume them with manual acks.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
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
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
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

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishAlarmRequest enqueues one alarm-scheduling request. Fire-and-forget
// from the caller's perspective: the error reports publish failure only, not
// whether the notification is ever delivered.
func (c *Client) PublishAlarmRequest(ctx context.Context, req *AlarmRequest) error {
	body, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal alarm request: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published alarm request",
		"title", req.Title,
		"delay_seconds", req.DelaySeconds,
		"queue", c.queueName)
	return nil
}

// PublishBackup enqueues a backup sync or delete message for a transaction.
func (c *Client) PublishBackup(ctx context.Context, msg *BackupMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal backup message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published backup message",
		"transaction_id", msg.TransactionID,
		"action", msg.Action,
		"queue", c.queueName)
	return nil
}

// ConsumeAlarmRequests delivers alarm requests to handler until ctx is done.
// Handler errors requeue the delivery; malformed payloads are dropped.
func (c *Client) ConsumeAlarmRequests(ctx context.Context, handler func(*AlarmRequest) error) error {
	return c.consume(ctx, func(body []byte) (requeueOnErr bool, err error) {
		msg, err := AlarmRequestFromJSON(body)
		if err != nil {
			return false, fmt.Errorf("unmarshal alarm request: %w", err)
		}
		return true, handler(msg)
	})
}

// ConsumeBackups delivers backup messages to handler until ctx is done.
func (c *Client) ConsumeBackups(ctx context.Context, handler func(*BackupMessage) error) error {
	return c.consume(ctx, func(body []byte) (requeueOnErr bool, err error) {
		msg, err := BackupMessageFromJSON(body)
		if err != nil {
			return false, fmt.Errorf("unmarshal backup message: %w", err)
		}
		return true, handler(msg)
	})
}

func (c *Client) consume(ctx context.Context, handle func([]byte) (bool, error)) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			requeue, err := handle(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"queue", c.queueName,
					"requeue", requeue)
				delivery.Nack(false, requeue)
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

// exponentialBackoff returns the wait before reconnect attempt n, capped at
// 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken AMQP connection
// worth reconnecting for.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ConsumeWithReconnect runs consume in a loop, redialing with exponential
// backoff on connection failures. Returns when ctx is done or on a
// non-connection error.
func ConsumeWithReconnect(ctx context.Context, url, exchange, queue string, run func(ctx context.Context, c *Client) error) error {
	attempt := 0
	for {
		client, err := NewClient(url, exchange, queue)
		if err == nil {
			attempt = 0
			err = run(ctx, client)
			client.Close()
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP connection lost, reconnecting",
			"queue", queue,
			"wait", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "thali/internal/log"
)

const (
	maxPublishAttempts = 3
	maxBackoff         = 30 * time.Second
	dialTimeout        = 5 * time.Second
)

// Client publishes and consumes record events on a durable direct exchange.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *applog.Logger

	// lock is a one-slot semaphore guarding conn and channel. Unlike a
	// mutex it can be abandoned when the caller's context ends.
	lock    chan struct{}
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewClient(url, exchangeName, queueName string, logger *applog.Logger) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       applog.OrDefault(logger).WithComponent(applog.ComponentAMQP),
		lock:         make(chan struct{}, 1),
	}
	if err := c.connect(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	<-c.lock
}

// connect dials within dialTimeout, or less when ctx expires sooner.
func (c *Client) connect(ctx context.Context) error {
	timeout := dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name on a direct exchange.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends event, reconnecting with backoff when the broker connection
// has dropped. It gives up as soon as ctx is done, including while waiting
// for another publisher.
func (c *Client) Publish(ctx context.Context, event RecordEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := c.acquire(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	defer c.release()

	for attempt := 0; ; attempt++ {
		err = c.publishLocked(ctx, body)
		if err == nil {
			c.logger.InfoContext(ctx, "Published record event",
				applog.FieldEventType, event.Type,
				applog.FieldDate, event.Date,
				"exchange", c.exchangeName)
			return nil
		}
		if !isConnectionError(err) || attempt+1 >= maxPublishAttempts {
			return fmt.Errorf("publish %s: %w", event.Type, err)
		}

		wait := exponentialBackoff(attempt)
		c.logger.WarnContext(ctx, "AMQP connection lost, reconnecting",
			"attempt", attempt+1, "backoff", wait, applog.FieldError, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		c.closeLocked()
		if err := c.connect(ctx); err != nil {
			c.logger.WarnContext(ctx, "AMQP reconnect failed", applog.FieldError, err)
		}
	}
}

func (c *Client) publishLocked(ctx context.Context, body []byte) error {
	if c.channel == nil {
		return amqp091.ErrClosed
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
		pctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Consume delivers events to handler until ctx is done. Undecodable
// messages are dropped; handler failures are requeued.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, RecordEvent) error) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	ch := c.channel
	c.release()
	if ch == nil {
		return amqp091.ErrClosed
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming record events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			event, err := RecordEventFromJSON(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Dropping undecodable record event", applog.FieldError, err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, event); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle record event",
					applog.FieldEventType, event.Type,
					applog.FieldDate, event.Date,
					applog.FieldError, err)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	c.lock <- struct{}{}
	defer c.release()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

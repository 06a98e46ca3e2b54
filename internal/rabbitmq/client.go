package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/config"
	"github.com/GoArmGo/PhotoHub/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ: одна durable-очередь событий photo.uploaded
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к брокеру, открывает канал и объявляет очередь
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// идемпотентно: существующая очередь с теми же параметрами не меняется
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", cfg.RabbitMQ.RabbitMQQueueName, err)
	}

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)
	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("failed to close RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close RabbitMQ connection: %w", err)
		}
	}
	c.logger.Info("RabbitMQ connection closed")
	return nil
}

// PublishPhotoUploaded реализует ports.PhotoEventPublisher
func (c *Client) PublishPhotoUploaded(ctx context.Context, payload payloads.PhotoUploadedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %q: %w", c.queue.Name, err)
	}

	c.logger.Debug("photo.uploaded published", "queue", c.queue.Name, "photo_id", payload.PhotoID)
	return nil
}

// StartConsumingPhotoUploaded реализует ports.PhotoEventConsumer.
// Сообщения обрабатываются в отдельной горутине до отмены ctx или закрытия канала.
func (c *Client) StartConsumingPhotoUploaded(ctx context.Context, handler func(context.Context, payloads.PhotoUploadedPayload) error) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // auto-ack, подтверждаем вручную
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ delivery channel closed, stopping consumer")
					return
				}
				deliver(ctx, msg, handler, c.logger)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

// deliver разбирает сообщение и подтверждает его по результату обработки.
// Неразбираемое сообщение отбрасывается. Ошибка обработки возвращает его в очередь
// один раз, повторная ошибка после redelivery отбрасывает сообщение.
func deliver(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.PhotoUploadedPayload) error, logger *slog.Logger) {
	start := time.Now()

	var payload payloads.PhotoUploadedPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		logger.Error("malformed message dropped", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		if msg.Redelivered {
			logger.Error("message processing failed after redelivery, dropping",
				"photo_id", payload.PhotoID,
				"error", err,
			)
			if err := msg.Nack(false, false); err != nil {
				logger.Error("failed to nack message", "error", err)
			}
			return
		}
		logger.Error("message processing failed, requeueing",
			"photo_id", payload.PhotoID,
			"error", err,
		)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("failed to ack message", "error", err)
		return
	}
	logger.Debug("message processed",
		"photo_id", payload.PhotoID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const defaultEmailQueue = "email_queue"

// AMQPMailer hands emails to the mail worker through a durable queue.
type AMQPMailer struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

func NewAMQPMailer(url, queue string, log *zap.Logger) (*AMQPMailer, error) {
	if queue == "" {
		queue = defaultEmailQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &AMQPMailer{
		conn:    conn,
		channel: ch,
		queue:   queue,
		log:     log.With(zap.String("component", "amqp_mailer"), zap.String("queue", queue)),
	}, nil
}

func (m *AMQPMailer) Send(_ context.Context, email Email) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.channel.Publish("", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", m.queue, err)
	}
	return nil
}

func (m *AMQPMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.channel.Close(); err != nil {
		m.log.Warn("Failed to close channel", zap.Error(err))
	}
	return m.conn.Close()
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "log_mailer"))}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.log.Info("Email",
		zap.String("template", email.Template),
		zap.String("to", email.To),
		zap.Any("params", email.Params),
	)
	return nil
}

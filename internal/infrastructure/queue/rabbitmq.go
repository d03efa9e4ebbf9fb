package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
)

const publishTimeout = 3 * time.Second

// EmailPublisher puts email jobs on a durable RabbitMQ queue.
type EmailPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewEmailPublisher(url, queue string) (*EmailPublisher, error) {
	conn, ch, err := open(url, queue)
	if err != nil {
		return nil, err
	}
	return &EmailPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *EmailPublisher) Close() {
	if p == nil {
		return
	}
	closeAll(p.conn, p.ch)
}

// Enqueue publishes job as a persistent JSON message on the default exchange.
func (p *EmailPublisher) Enqueue(ctx context.Context, job mailer.EmailJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.ch.PublishWithContext(c,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// JobHandler processes one job. Returning an error wrapping mailer.ErrBadJob
// drops the message; any other error requeues it.
type JobHandler func(ctx context.Context, job mailer.EmailJob) error

// EmailConsumer reads email jobs from the queue.
type EmailConsumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	Queue  string
	Logger *logrus.Logger
}

func NewEmailConsumer(url, queue string, prefetch int, logger *logrus.Logger) (*EmailConsumer, error) {
	conn, ch, err := open(url, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		closeAll(conn, ch)
		return nil, err
	}
	return &EmailConsumer{conn: conn, ch: ch, Queue: queue, Logger: logger}, nil
}

func (c *EmailConsumer) Close() {
	if c == nil {
		return
	}
	closeAll(c.conn, c.ch)
}

// Run consumes until ctx is done or the channel closes.
func (c *EmailConsumer) Run(ctx context.Context, handle JobHandler) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			dispatch(ctx, d, handle, c.Logger)
		}
	}
}

func dispatch(ctx context.Context, d amqp.Delivery, handle JobHandler, logger *logrus.Logger) {
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.WithError(err).Warn("dropping malformed email job")
		_ = d.Nack(false, false)
		return
	}
	if err := handle(ctx, job); err != nil {
		requeue := !errors.Is(err, mailer.ErrBadJob)
		logger.WithError(err).WithField("template", job.Template).WithField("requeue", requeue).Warn("email job failed")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func open(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		closeAll(conn, ch)
		return nil, nil, err
	}
	return conn, ch, nil
}

func closeAll(conn *amqp.Connection, ch *amqp.Channel) {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

const mailQueueName = "email_queue"

// MailQueue 把邮件交给 mail 服务异步发送
type MailQueue interface {
	Publish(msg domain.MailMessage) error
}

type amqpMailQueue struct {
	ch      *amqp.Channel
	timeout time.Duration
}

func NewAMQPMailQueue(ch *amqp.Channel, timeout time.Duration) MailQueue {
	return &amqpMailQueue{ch: ch, timeout: timeout}
}

func (q *amqpMailQueue) Publish(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	return q.ch.PublishWithContext(ctx, "", mailQueueName, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Package service holds operations that span several stores: the account
// deletion cascade and best-effort audit event publication.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/encoreapp/encore/internal/queue"
)

// AuditPublisher publishes lifecycle events to RabbitMQ.  Publication is
// strictly best-effort: every failure is logged and returned, and callers
// ignore the error so the request flow is never interrupted.  An empty URL
// disables publishing entirely.
type AuditPublisher struct {
	URL string
}

// Publish sends an AuditEvent to the profile.audit queue.  Messages are
// marked persistent and the queue declaration is idempotent.
func (p *AuditPublisher) Publish(ctx context.Context, event q.AuditEvent) error {
	if p == nil || p.URL == "" {
		return nil
	}
	event.OccurredAt = time.Now().UTC().Format(time.RFC3339)

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("audit: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("audit: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(q.AuditQueueName, true, false, false, false, nil); err != nil {
		log.Printf("audit: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("audit: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.AuditQueueName, false, false, pub); err != nil {
		log.Printf("audit: publish failed: %v", err)
		return err
	}
	return nil
}

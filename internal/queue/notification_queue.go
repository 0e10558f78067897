package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type NotificationKind string

const (
	NotificationStateChanged   NotificationKind = "state_changed"
	NotificationNewCommentaire NotificationKind = "new_commentaire"
)

// NotificationPayload is one dossier event waiting to be mailed.
type NotificationPayload struct {
	Kind      NotificationKind `json:"kind"`
	DossierID string           `json:"dossier_id"`
	From      dossier.State    `json:"from,omitempty"`
	To        dossier.State    `json:"to,omitempty"`
	// Author and Body are set for new commentaires.
	Author    string `json:"author,omitempty"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"created_at"`
	Try       int    `json:"try" default:"0"`
}

func NewStateChangedPayload(dossierID string, from, to dossier.State) NotificationPayload {
	return NotificationPayload{
		Kind:      NotificationStateChanged,
		DossierID: dossierID,
		From:      from,
		To:        to,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

func NewCommentairePayload(dossierID, author, body string) NotificationPayload {
	return NotificationPayload{
		Kind:      NotificationNewCommentaire,
		DossierID: dossierID,
		Author:    author,
		Body:      body,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// PublishNotification serializes the payload onto the notification queue.
func PublishNotification(p Publisher, payload NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return p.Publish(QueueNotification, body)
}

// NotificationJobHandler processes one payload and reports whether a failure
// is worth another try.
type NotificationJobHandler func(ctx context.Context, payload NotificationPayload) (bool, error)

type notificationWorker struct {
	number    int
	publisher Publisher
	handler   NotificationJobHandler
	logger    *zap.SugaredLogger
}

func (r *RabbitMQ) ConsumeNotificationJob(ctx context.Context, handler NotificationJobHandler, maxWorker int, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = util.NewTestLogger()
	}

	msgs, err := r.Consume(QueueNotification)
	if err != nil {
		return fmt.Errorf("failed to start consuming notification jobs: %w", err)
	}

	for i := range maxWorker {
		w := notificationWorker{number: i + 1, publisher: r, handler: handler, logger: logger}
		go w.run(ctx, msgs)
	}

	return nil
}

func (w notificationWorker) run(ctx context.Context, msgs <-chan amqp091.Delivery) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("[Notification Worker %d] Shutting down", w.number)
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Infof("[Notification Worker %d] Message channel closed", w.number)
				return
			}
			w.process(ctx, msg)
		}
	}
}

func (w notificationWorker) process(ctx context.Context, msg amqp091.Delivery) {
	if msg.Body == nil {
		w.logger.Warnf("[Notification Worker %d] Received empty message body", w.number)
		_ = msg.Nack(false, false)
		return
	}

	var payload NotificationPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		w.logger.Warnf("[Notification Worker %d] Invalid payload: %v", w.number, err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.logger.With("worker", w.number, "try", payload.Try, "kind", payload.Kind, "dossierId", payload.DossierID)

	shouldRequeue, err := w.handler(ctx, payload)
	if err == nil {
		log.Info("Processed notification job")
		_ = msg.Ack(false)
		return
	}

	log.Errorw("Handler error processing notification job", "error", err)
	if !shouldRequeue || payload.Try >= MAX_QUEUE_RETRY {
		log.Warnw("Dropping notification job", "shouldRequeue", shouldRequeue)
		_ = msg.Nack(false, false)
		return
	}

	payload.Try++
	if err := PublishNotification(w.publisher, payload); err != nil {
		log.Errorw("Failed to requeue notification job", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log.Info("Requeued notification job")
	_ = msg.Ack(false)
}

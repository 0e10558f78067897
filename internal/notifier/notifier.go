package notifier

import (
	"context"

	"github.com/SeakMengs/DossierFlow/internal/queue"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"go.uber.org/zap"
)

// Notifier emits dossier events. Delivery is best effort: a failure is
// logged and never fails the request that triggered it.
type Notifier interface {
	StateChanged(ctx context.Context, dossierID string, from, to dossier.State)
	NewCommentaire(ctx context.Context, dossierID, author, body string)
}

type QueueNotifier struct {
	publisher queue.Publisher
	logger    *zap.SugaredLogger
}

func NewQueueNotifier(publisher queue.Publisher, logger *zap.SugaredLogger) *QueueNotifier {
	if logger == nil {
		// For unit test
		logger = util.NewTestLogger()
	}
	return &QueueNotifier{publisher: publisher, logger: logger}
}

func (n *QueueNotifier) StateChanged(ctx context.Context, dossierID string, from, to dossier.State) {
	if from == to {
		return
	}
	n.publish(queue.NewStateChangedPayload(dossierID, from, to))
}

func (n *QueueNotifier) NewCommentaire(ctx context.Context, dossierID, author, body string) {
	n.publish(queue.NewCommentairePayload(dossierID, author, body))
}

func (n *QueueNotifier) publish(payload queue.NotificationPayload) {
	if err := queue.PublishNotification(n.publisher, payload); err != nil {
		n.logger.Errorw("Failed to publish dossier notification", "error", err, "kind", payload.Kind, "dossierId", payload.DossierID)
	}
}

// Noop drops every event, used when no broker is configured.
type Noop struct{}

func (Noop) StateChanged(ctx context.Context, dossierID string, from, to dossier.State) {}

func (Noop) NewCommentaire(ctx context.Context, dossierID, author, body string) {}

package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SeakMengs/DossierFlow/internal/mailer"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/queue"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"go.uber.org/zap"
)

// Dispatcher turns queued dossier events into mails.
type Dispatcher struct {
	repo     *repository.Repository
	mailer   mailer.Client
	frontURL string
	logger   *zap.SugaredLogger
}

func NewDispatcher(repo *repository.Repository, mail mailer.Client, frontURL string, logger *zap.SugaredLogger) *Dispatcher {
	if logger == nil {
		// For unit test
		logger = util.NewTestLogger()
	}
	return &Dispatcher{repo: repo, mailer: mail, frontURL: frontURL, logger: logger}
}

// Handle implements queue.NotificationJobHandler. A missing dossier or an
// unknown event is dropped; a mail failure asks for another try.
func (d *Dispatcher) Handle(ctx context.Context, payload queue.NotificationPayload) (bool, error) {
	dos, err := d.repo.Dossier.GetById(ctx, nil, payload.DossierID)
	if err != nil {
		if errors.Is(err, dossier.ErrNotFound) {
			return false, err
		}
		return true, err
	}

	url := util.GetDossierURL(d.frontURL, dos.ID)

	switch payload.Kind {
	case queue.NotificationStateChanged:
		return d.send(mailer.TemplateDossierStateChanged, []string{dos.User.Email}, mailer.DossierStateChangedData{
			DossierID:        dos.ID,
			ProcedureLibelle: dos.Procedure.Libelle,
			From:             string(payload.From),
			To:               string(payload.To),
			DossierURL:       url,
		})
	case queue.NotificationNewCommentaire:
		return d.send(mailer.TemplateNewCommentaire, CommentaireRecipients(dos, payload.Author), mailer.NewCommentaireData{
			DossierID:        dos.ID,
			ProcedureLibelle: dos.Procedure.Libelle,
			Author:           payload.Author,
			Body:             payload.Body,
			DossierURL:       url,
		})
	}

	return false, fmt.Errorf("unsupported notification kind: %s", payload.Kind)
}

func (d *Dispatcher) send(template mailer.MailTemplateFile, to []string, data any) (bool, error) {
	var failed []string
	for _, email := range to {
		status, err := d.mailer.Send(template, email, data)
		if err == nil && status >= http.StatusBadRequest {
			err = fmt.Errorf("mail rejected with status %d", status)
		}
		if err != nil {
			d.logger.Errorw("Failed to mail notification", "error", err, "toEmail", email, "templateFile", template)
			failed = append(failed, email)
		}
	}

	if len(failed) > 0 {
		return true, fmt.Errorf("failed to mail %s", strings.Join(failed, ", "))
	}
	return false, nil
}

// CommentaireRecipients lists the owner and the followers of the dossier,
// without the author of the comment.
func CommentaireRecipients(d *model.Dossier, author string) []string {
	seen := map[string]bool{strings.ToLower(author): true}
	var out []string
	add := func(email string) {
		key := strings.ToLower(email)
		if email == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, email)
	}

	add(d.User.Email)
	for _, f := range d.Follows {
		add(f.Gestionnaire.Email)
	}
	return out
}

package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"go.uber.org/zap"
)

const (
	MAX_RETRY = 3
)

type MailTemplateFile string

const (
	TemplateDossierStateChanged MailTemplateFile = "templates/dossier_state_changed.tmpl"
	TemplateNewCommentaire      MailTemplateFile = "templates/new_commentaire.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile MailTemplateFile, toEmail string, data any) (int, error)
}

type DossierStateChangedData struct {
	DossierID        string
	ProcedureLibelle string
	From             string
	To               string
	DossierURL       string
}

type NewCommentaireData struct {
	DossierID        string
	ProcedureLibelle string
	Author           string
	Body             string
	DossierURL       string
}

// Message is a template rendered into a subject and an html body.
type Message struct {
	Subject string
	Body    string
}

// Render executes the "subject" and "body" blocks of an embedded template.
func Render(templateFile MailTemplateFile, data any) (Message, error) {
	tmpl, err := template.ParseFS(FS, string(templateFile))
	if err != nil {
		return Message{}, fmt.Errorf("failed to parse mail template %s: %w", templateFile, err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("failed to execute subject of %s: %w", templateFile, err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return Message{}, fmt.Errorf("failed to execute body of %s: %w", templateFile, err)
	}

	return Message{Subject: subject.String(), Body: body.String()}, nil
}

// NewClient builds the mailer selected by the configured driver.
func NewClient(cfg config.MailConfig, isProduction bool, logger *zap.SugaredLogger) (Client, error) {
	switch cfg.DRIVER {
	case config.MailDriverSendGrid:
		return NewSendgrid(cfg.SEND_GRID.API_KEY, cfg.FROM_EMAIL, isProduction, logger), nil
	case config.MailDriverGmail:
		return NewGmailMailer(cfg.GMAIL_USERNAME, cfg.GMAIL_APP_PASSWORD, logger), nil
	}
	return nil, fmt.Errorf("unknown mail driver %q", cfg.DRIVER)
}

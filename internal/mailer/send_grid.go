package mailer

import (
	"fmt"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type SendGridMailer struct {
	fromEmail string
	client    *sendgrid.Client
	isSandBox bool
	logger    *zap.SugaredLogger
	// wait between two attempts, multiplied by the attempt number
	backoff time.Duration
}

func NewSendgrid(apiKey string, fromEmail string, isProduction bool, logger *zap.SugaredLogger) *SendGridMailer {
	// For unit test
	if logger == nil {
		logger = util.NewTestLogger()
	}

	return &SendGridMailer{
		fromEmail: fromEmail,
		client:    sendgrid.NewSendClient(apiKey),
		// Sandbox mode only validates the request, nothing is delivered.
		isSandBox: !isProduction,
		logger:    logger,
		backoff:   time.Second,
	}
}

func (m SendGridMailer) newMessage(templateFile MailTemplateFile, toEmail string, data any) (*mail.SGMailV3, error) {
	rendered, err := Render(templateFile, data)
	if err != nil {
		return nil, err
	}

	from := mail.NewEmail(util.GetAppName(), m.fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, rendered.Subject, to, "", rendered.Body)
	message.SetMailSettings(&mail.MailSettings{
		SandboxMode: &mail.Setting{
			Enable: &m.isSandBox,
		},
	})
	return message, nil
}

// Send renders templateFile with data and delivers it to toEmail.
//
//	status, err := m.Send(mailer.TemplateNewCommentaire, "owner@example.com", mailer.NewCommentaireData{...})
func (m SendGridMailer) Send(templateFile MailTemplateFile, toEmail string, data any) (int, error) {
	message, err := m.newMessage(templateFile, toEmail, data)
	if err != nil {
		m.logger.Errorf("Error occurred during mail template rendering, error: %v", err)
		return -1, err
	}

	var lastErr error
	for i := 0; i < MAX_RETRY; i++ {
		response, err := m.client.Send(message)
		if err == nil {
			return response.StatusCode, nil
		}
		lastErr = err
		time.Sleep(m.backoff * time.Duration(i+1))
	}

	m.logger.Errorf("Failed to send email after %d attempt, error: %v", MAX_RETRY, lastErr)

	return -1, fmt.Errorf("failed to send email after %d attempt: %w", MAX_RETRY, lastErr)
}

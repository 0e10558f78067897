package mailer

import (
	"fmt"
	"net/http"

	"github.com/SeakMengs/DossierFlow/internal/util"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type GmailMailer struct {
	fromEmail string
	fromName  string
	dialer    *gomail.Dialer
	logger    *zap.SugaredLogger
}

func NewGmailMailer(username, password string, logger *zap.SugaredLogger) *GmailMailer {
	if logger == nil {
		// For unit test
		logger = util.NewTestLogger()
	}

	return &GmailMailer{
		fromEmail: username,
		fromName:  util.GetAppName(),
		dialer:    gomail.NewDialer("smtp.gmail.com", 587, username, password),
		logger:    logger,
	}
}

// newMessage renders the template into a gomail message ready to send.
func (gm *GmailMailer) newMessage(templateFile MailTemplateFile, toEmail string, data any) (*gomail.Message, error) {
	rendered, err := Render(templateFile, data)
	if err != nil {
		return nil, err
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", gm.fromEmail, gm.fromName)
	message.SetHeader("To", toEmail)
	message.SetHeader("Subject", rendered.Subject)
	message.SetBody("text/html", rendered.Body)
	return message, nil
}

func (gm *GmailMailer) Send(templateFile MailTemplateFile, toEmail string, data any) (int, error) {
	message, err := gm.newMessage(templateFile, toEmail, data)
	if err != nil {
		gm.logger.Errorw("failed to render email", "error", err, "templateFile", templateFile)
		return http.StatusInternalServerError, err
	}

	if err := gm.dialer.DialAndSend(message); err != nil {
		gm.logger.Errorw("failed to send email", "error", err, "toEmail", toEmail, "templateFile", templateFile)
		return http.StatusInternalServerError, fmt.Errorf("failed to send email: %w", err)
	}

	gm.logger.Infow("email sent successfully", "toEmail", toEmail, "templateFile", templateFile)

	return http.StatusOK, nil
}

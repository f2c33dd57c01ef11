package mailservice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DijitalRED/red-blog/internal/common"
)

const contactTemplate = "contact_email.tmpl"

// NewMailService returns a service delivering contact messages to recipient.
func NewMailService(dialer Dialer, sender, recipient string, logger MailLogger) *MailService {
	return &MailService{
		m:         NewMailer(dialer, sender, NewTemplate()),
		recipient: recipient,
		logger:    logger,
	}
}

// SendContactMessage validates msg and mails it to the site owner in a
// single attempt. A delivery failure is logged and returned to the caller.
func (s *MailService) SendContactMessage(ctx context.Context, msg *ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Message = strings.TrimSpace(msg.Message)

	v := common.NewValidator()
	validateContactMessage(v, msg)
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.m.send(s.recipient, msg.Email, msg, contactTemplate)
	if err != nil {
		s.logger.Error("could not send contact message", slog.String("email", msg.Email), slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("contact message sent", slog.String("email", msg.Email))
	return nil
}

package accounts

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

// Message is an outbound email
type Message struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// Mailer delivers messages, implementations decide the transport
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer delivers through an SMTP relay using gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)
	if msg.HTMLBody != "" {
		mail.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := m.dialer.DialAndSend(mail); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to deliver email").
			WithMetadata(map[string]any{
				"to":      msg.To,
				"subject": msg.Subject,
			})
	}

	return nil
}

// LogMailer prints messages instead of delivering them, useful when no
// SMTP relay is configured
type LogMailer struct {
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(msg Message) error {
	m.logger.Info("email notification", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

// NewConfirmationMessage builds the confirmation email for a user, the
// link embeds a fresh email scoped token.
func NewConfirmationMessage(baseURL string, tokens TokenService, user *User) (Message, error) {
	if user == nil {
		return Message{}, errors.New("user must not be nil", errors.CategoryInternal)
	}

	token, err := tokens.CreateEmailToken(user.Email)
	if err != nil {
		return Message{}, errors.Wrap(err, errors.CategoryInternal, "failed to create confirmation token")
	}

	link := fmt.Sprintf("%s/auth/confirmed_email/%s", strings.TrimRight(baseURL, "/"), token)

	body := fmt.Sprintf(
		"Hi %s,\n\nConfirm your email address by visiting the link below:\n\n%s\n\nIf you did not create this account you can ignore this message.\n",
		user.Username,
		link,
	)

	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Confirm your email address by clicking the link below:</p><p><a href="%s">Confirm email</a></p><p>If you did not create this account you can ignore this message.</p>`,
		user.Username,
		link,
	)

	return Message{
		To:       user.Email,
		Subject:  "Confirm your email",
		Body:     body,
		HTMLBody: htmlBody,
	}, nil
}

package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const welcomeSubject = "Welcome to Our E-Commerce Store!"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2 style="color: #0056b3;">Welcome, {{.Username}}!</h2>
  <p>Thank you for registering with us. We are excited to have you as a new member of our community.</p>
  <p>You can now explore our wide range of products and enjoy a seamless shopping experience.</p>
  <p>If you have any questions, feel free to contact our support team.</p>
  <p>Happy Shopping!</p>
  <p>The E-Commerce Team</p>
</div>`))

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// WelcomeMessage renders the welcome mail for one recipient.
func WelcomeMessage(from, username, email string) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, struct{ Username string }{username}); err != nil {
		return nil, fmt.Errorf("render welcome mail: %w", err)
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", welcomeSubject)
	m.SetBody("text/html", body.String())
	return m, nil
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer dialer
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) SendWelcome(ctx context.Context, username, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := WelcomeMessage(s.from, username, email)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome mail to %s: %w", email, err)
	}
	return nil
}

// LogMailer logs instead of sending. Used when no SMTP host is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) SendWelcome(_ context.Context, username, email string) error {
	l.log.Info("welcome mail (not sent, no SMTP host)",
		zap.String("username", username),
		zap.String("email", email))
	return nil
}

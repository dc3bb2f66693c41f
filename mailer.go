package auth

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

//go:embed templates
var mailTemplates embed.FS

// Mailer delivers password reset notifications over SMTP. The email body
// is rendered from the embedded templates directory.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
	engine *django.Engine
	logger Logger
}

type mailerConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	Subject  string `env:"SMTP_RESET_SUBJECT" envDefault:"Restablece tu contraseña"`
}

func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return errors.New("missing SMTP_HOST environment variable", errors.CategoryValidation)
	}
	if c.From == "" {
		return errors.New("missing SMTP_FROM environment variable", errors.CategoryValidation)
	}
	return nil
}

// NewMailer creates a Mailer configured from environment variables.
func NewMailer() (*Mailer, error) {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse mailer environment variables")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	templates, err := fs.Sub(mailTemplates, "templates")
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open mail templates")
	}

	engine := django.NewFileSystem(http.FS(templates), ".html")
	if err := engine.Load(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load mail templates")
	}

	return &Mailer{
		config: &cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		engine: engine,
		logger: defLogger{},
	}, nil
}

// WithLogger overrides the logger used by the Mailer.
func (m *Mailer) WithLogger(logger Logger) *Mailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// SendPasswordReset renders the reset template and emails it.
func (m *Mailer) SendPasswordReset(_ context.Context, notification ResetNotification) error {
	var body bytes.Buffer
	err := m.engine.Render(&body, "password_reset", map[string]any{
		"email":      notification.Email,
		"secret":     notification.Secret,
		"reset_link": notification.ResetLink,
		"expires_at": notification.ExpiresAt.Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to render password reset email")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", notification.Email)
	msg.SetHeader("Subject", m.config.Subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send password reset email", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to send password reset email")
	}

	return nil
}

var _ Notifier = (*Mailer)(nil)

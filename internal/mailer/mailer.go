package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"

	"github.com/vitrinehq/vitrine/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mailer sends Vitrine's transactional mail over SMTP: contact-form
// notifications to the site owner and welcome mail to new subscribers.
// Sends are synchronous with no retries; a failure surfaces immediately
// to the caller.
type Mailer struct {
	client    *gomail.Client
	from      string
	contactTo string
	baseURL   string
	templates *template.Template
}

// ContactMessage is a submitted contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// New creates a Mailer from SMTP configuration. Returns (nil, nil) when no
// SMTP host is configured; callers treat a nil Mailer as "mail disabled".
func New(cfg config.SMTPConfig, baseURL string) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Mailer{
		client:    client,
		from:      cfg.From,
		contactTo: cfg.ContactTo,
		baseURL:   baseURL,
		templates: tmpl,
	}, nil
}

// SendContact delivers a contact-form submission to the configured site-owner
// address. Reply-To is set to the submitter so the owner can answer directly.
func (m *Mailer) SendContact(ctx context.Context, msg ContactMessage) error {
	if m.contactTo == "" {
		return fmt.Errorf("no contact recipient configured")
	}

	subject := msg.Subject
	if subject == "" {
		subject = "New contact form message"
	}

	body, err := m.render("contact.html", msg)
	if err != nil {
		return err
	}

	mail := gomail.NewMsg()
	if err := mail.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := mail.To(m.contactTo); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	if msg.Email != "" {
		if err := mail.ReplyTo(msg.Email); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	mail.Subject(subject)
	mail.SetBodyString(gomail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, mail); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

// SendWelcome delivers the subscription welcome mail carrying the
// unsubscribe link for the given token.
func (m *Mailer) SendWelcome(ctx context.Context, to, unsubscribeToken string) error {
	data := struct {
		UnsubscribeURL string
	}{
		UnsubscribeURL: fmt.Sprintf("%s/api/unsubscribe/%s", m.baseURL, unsubscribeToken),
	}

	body, err := m.render("welcome.html", data)
	if err != nil {
		return err
	}

	mail := gomail.NewMsg()
	if err := mail.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := mail.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	mail.Subject("Welcome to the newsletter")
	mail.SetBodyString(gomail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, mail); err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	return nil
}

func (m *Mailer) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

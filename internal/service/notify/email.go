package notify

import (
	"context"
	"fmt"
	"html/template"
	"strconv"

	"OeeForecast/internal/domain/models"

	"github.com/wneessen/go-mail"
)

// SendFunc delivers rendered messages. The default dials the configured SMTP server.
type SendFunc func(ctx context.Context, msgs ...*mail.Msg) error

// EmailConfig configures EmailNotifier.
type EmailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

// EmailNotifier sends one HTML message per alert over SMTP.
type EmailNotifier struct {
	cfg  EmailConfig
	send SendFunc
}

// EmailOption configures EmailNotifier.
type EmailOption func(*EmailNotifier)

// WithSendFunc replaces SMTP delivery.
func WithSendFunc(fn SendFunc) EmailOption {
	return func(n *EmailNotifier) {
		if fn != nil {
			n.send = fn
		}
	}
}

// NewEmailNotifier builds the SMTP client unless a SendFunc is injected.
// STARTTLS is used when the server offers it.
func NewEmailNotifier(cfg EmailConfig, opts ...EmailOption) (*EmailNotifier, error) {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	n := &EmailNotifier{cfg: cfg}
	for _, opt := range opts {
		opt(n)
	}
	if n.send != nil {
		return n, nil
	}

	copts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		copts = append(copts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, copts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	n.send = client.DialAndSendWithContext
	return n, nil
}

func (n *EmailNotifier) Name() string { return "email" }

// Notify mails every alert to the configured recipients over one connection.
func (n *EmailNotifier) Notify(ctx context.Context, evs []*models.AlertEvent) error {
	if len(n.cfg.Recipients) == 0 || len(evs) == 0 {
		return nil
	}
	msgs := make([]*mail.Msg, 0, len(evs))
	for _, ev := range evs {
		m, err := RenderEmail(n.cfg.From, n.cfg.Recipients, ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	if err := n.send(ctx, msgs...); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendTo mails one alert to explicit recipients.
func (n *EmailNotifier) SendTo(ctx context.Context, recipients []string, ev *models.AlertEvent) error {
	m, err := RenderEmail(n.cfg.From, recipients, ev)
	if err != nil {
		return err
	}
	if err := n.send(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Subject returns "[OEE ALERT - HIGH] <machine>".
func Subject(a models.Alert) string {
	name := a.MachineName
	if name == "" {
		name = "Machine " + strconv.FormatInt(a.MachineID, 10)
	}
	return fmt.Sprintf("[OEE ALERT - %s] %s", a.Severity.Label(), name)
}

var emailTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<div style="border-left:6px solid {{.Color}};padding:12px 16px">
<h2 style="color:{{.Color}};margin:0 0 8px">OEE alert: {{.Machine}}</h2>
<p>{{.Message}}</p>
<table cellpadding="4">
<tr><td>Severity</td><td><b>{{.Severity}}</b></td></tr>
<tr><td>Current OEE</td><td>{{printf "%.1f" .Current}}%</td></tr>
<tr><td>Predicted OEE</td><td>{{printf "%.1f" .Predicted}}%</td></tr>
<tr><td>Change</td><td>{{printf "%+.1f" .Change}}%</td></tr>
</table>
<p><i>{{.Recommendation}}</i></p>
</div>
</body></html>`))

// RenderEmail builds the message for one alert: a plain text body with an HTML alternative.
func RenderEmail(from string, to []string, ev *models.AlertEvent) (*mail.Msg, error) {
	a := ev.Alert
	machine := a.MachineName
	if machine == "" {
		machine = "Machine " + strconv.FormatInt(a.MachineID, 10)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("alert email from: %w", err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("alert email to: %w", err)
	}
	m.Subject(Subject(a))
	m.SetDate()
	m.SetMessageID()

	m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("%s\n\nSeverity: %s\nCurrent OEE: %.1f%%\nPredicted OEE: %.1f%%\nChange: %+.1f%%\n\n%s\n",
		a.Message, a.Severity.Label(), a.CurrentValue, a.PredictedValue, a.ChangeDelta, a.Recommendation))
	err := m.AddAlternativeHTMLTemplate(emailTemplate, map[string]interface{}{
		"Color":          a.Severity.Color(),
		"Machine":        machine,
		"Message":        a.Message,
		"Severity":       a.Severity.Label(),
		"Current":        a.CurrentValue,
		"Predicted":      a.PredictedValue,
		"Change":         a.ChangeDelta,
		"Recommendation": a.Recommendation,
	})
	if err != nil {
		return nil, fmt.Errorf("render alert email: %w", err)
	}
	return m, nil
}

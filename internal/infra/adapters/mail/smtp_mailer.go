package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"apivro/internal/config"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer renders HTML templates and sends them over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg   config.SMTPConfig
	brand string
	send  SendFunc
	now   func() time.Time
}

type Option func(*SMTPMailer)

func WithSendFunc(f SendFunc) Option {
	return func(m *SMTPMailer) { m.send = f }
}

func WithBrand(name string) Option {
	return func(m *SMTPMailer) {
		if name != "" {
			m.brand = name
		}
	}
}

func NewSMTPMailer(cfg config.SMTPConfig, opts ...Option) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg, brand: "API VRO", send: smtp.SendMail, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Configured reports whether host and credentials are set.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Username != "" && m.cfg.Password != ""
}

func (m *SMTPMailer) SendPaymentSuccess(ctx context.Context, e adapter.PaymentSuccessEmail) error {
	data := map[string]any{
		"CustomerName":  e.CustomerName,
		"PlanName":      e.PlanName,
		"MessageLimit":  e.MessageLimit,
		"Amount":        model.FormatRupiah(e.Amount),
		"InvoiceNumber": e.InvoiceNumber,
		"InvoiceURL":    e.InvoiceURL,
		"PaidAt":        formatDate(e.PaidAt),
		"ValidUntil":    formatDate(e.ValidUntil),
	}
	subject := fmt.Sprintf("Pembayaran Berhasil - %s Plan", e.PlanName)
	return m.deliver(ctx, e.To, subject, "payment_success.html", data)
}

func (m *SMTPMailer) SendDeviceDisconnected(ctx context.Context, e adapter.DeviceDisconnectedEmail) error {
	data := map[string]any{
		"CustomerName": e.CustomerName,
		"DeviceName":   e.DeviceName,
		"PhoneNumber":  e.PhoneNumber,
		"DashboardURL": e.DashboardURL,
		"At":           formatDate(e.At),
	}
	subject := fmt.Sprintf("Device %s Terputus", e.DeviceName)
	return m.deliver(ctx, e.To, subject, "device_disconnected.html", data)
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, tmpl string, data map[string]any) error {
	if !m.Configured() {
		return fmt.Errorf("smtp mailer not configured")
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data["Year"] = m.now().Year()
	data["Brand"] = m.brand

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}
	msg := m.compose(to, subject, body.Bytes())

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.fromAddress(), []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) fromAddress() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

func (m *SMTPMailer) compose(to, subject string, html []byte) []byte {
	from := (&mail.Address{Name: m.cfg.FromName, Address: m.fromAddress()}).String()
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.Write(html)
	return b.Bytes()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006 15:04 MST")
}

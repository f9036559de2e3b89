//go:build !integration

package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivro/internal/config"
	"apivro/internal/domain/ports/adapter"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(c *captured, sendErr error) *SMTPMailer {
	cfg := config.SMTPConfig{Host: "smtp.test", Port: 587, Username: "u", Password: "p", From: "support@apivro.test", FromName: "API VRO"}
	return NewSMTPMailer(cfg, WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
		return sendErr
	}))
}

func TestSMTPMailer_Configured(t *testing.T) {
	assert.False(t, NewSMTPMailer(config.SMTPConfig{Host: "h"}).Configured())
	assert.True(t, NewSMTPMailer(config.SMTPConfig{Host: "h", Username: "u", Password: "p"}).Configured())
}

func TestSMTPMailer_SendPaymentSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("should render and send html", func(t *testing.T) {
		var c captured
		m := newTestMailer(&c, nil)
		err := m.SendPaymentSuccess(ctx, adapter.PaymentSuccessEmail{
			To:            "alice@example.test",
			CustomerName:  "Alice",
			PlanName:      "Pro",
			MessageLimit:  5000,
			Amount:        150000,
			InvoiceNumber: "INV-1",
			InvoiceURL:    "https://files.test/inv.pdf",
			PaidAt:        time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		assert.Equal(t, "smtp.test:587", c.addr)
		assert.Equal(t, "support@apivro.test", c.from)
		assert.Equal(t, []string{"alice@example.test"}, c.to)
		assert.Contains(t, c.msg, "Content-Type: text/html")
		assert.Contains(t, c.msg, "Rp 150.000")
		assert.Contains(t, c.msg, "INV-1")
		assert.Contains(t, c.msg, "https://files.test/inv.pdf")
		assert.True(t, strings.HasPrefix(c.msg, `From: "API VRO" <support@apivro.test>`))
	})

	t.Run("should escape customer input", func(t *testing.T) {
		var c captured
		m := newTestMailer(&c, nil)
		require.NoError(t, m.SendPaymentSuccess(ctx, adapter.PaymentSuccessEmail{To: "a@b.test", CustomerName: "<script>", PlanName: "Pro"}))
		assert.NotContains(t, c.msg, "<script>")
	})

	t.Run("should wrap transport errors", func(t *testing.T) {
		var c captured
		m := newTestMailer(&c, errors.New("conn refused"))
		err := m.SendPaymentSuccess(ctx, adapter.PaymentSuccessEmail{To: "a@b.test", PlanName: "Pro"})
		assert.ErrorContains(t, err, "conn refused")
	})

	t.Run("should refuse when not configured", func(t *testing.T) {
		m := NewSMTPMailer(config.SMTPConfig{})
		assert.Error(t, m.SendPaymentSuccess(ctx, adapter.PaymentSuccessEmail{To: "a@b.test"}))
	})

	t.Run("should reject a bad recipient", func(t *testing.T) {
		var c captured
		m := newTestMailer(&c, nil)
		assert.Error(t, m.SendPaymentSuccess(ctx, adapter.PaymentSuccessEmail{To: "nope"}))
		assert.Empty(t, c.addr)
	})
}

func TestSMTPMailer_SendDeviceDisconnected(t *testing.T) {
	var c captured
	m := newTestMailer(&c, nil)
	err := m.SendDeviceDisconnected(context.Background(), adapter.DeviceDisconnectedEmail{
		To: "bob@example.test", CustomerName: "Bob", DeviceName: "Office", PhoneNumber: "62812", DashboardURL: "https://app.test/devices",
	})
	require.NoError(t, err)
	assert.Contains(t, c.msg, "Office")
	assert.Contains(t, c.msg, "(62812)")
	assert.Contains(t, c.msg, "https://app.test/devices")
}

package alert

import (
	"bytes"
	"errors"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/config"
)

func smtpConfig() config.AlertConfig {
	return config.AlertConfig{
		Enabled:  true,
		SMTPHost: "mail.example.org",
		SMTPPort: 587,
		Username: "ops",
		Password: "secret",
		From:     "scholia@example.org",
		To:       []string{"ops@example.org", "it@example.org"},
	}
}

func TestNewSelectsAlerter(t *testing.T) {
	assert.IsType(t, &EmailAlerter{}, New(smtpConfig(), nil))
	assert.IsType(t, &LogAlerter{}, New(config.AlertConfig{}, nil))

	noRecipients := smtpConfig()
	noRecipients.To = nil
	assert.IsType(t, &LogAlerter{}, New(noRecipients, nil))
}

func TestEmailAlerterSends(t *testing.T) {
	a := NewEmailAlerter(smtpConfig())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	a.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, a.Alert("Graph store unavailable", "breaker open"))
	assert.Equal(t, "mail.example.org:587", gotAddr)
	assert.Equal(t, "scholia@example.org", gotFrom)
	assert.Equal(t, []string{"ops@example.org", "it@example.org"}, gotTo)
	assert.Contains(t, string(gotMsg), "To: ops@example.org,it@example.org\r\n")
	assert.Contains(t, string(gotMsg), "Subject: [scholia] Graph store unavailable\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nbreaker open\r\n")
}

func TestEmailAlerterWrapsSendError(t *testing.T) {
	a := NewEmailAlerter(smtpConfig())
	refused := errors.New("connection refused")
	a.send = func(string, smtp.Auth, string, []string, []byte) error { return refused }

	err := a.Alert("subject", "body")
	assert.ErrorIs(t, err, refused)
}

func TestEmailAlerterDisabled(t *testing.T) {
	cfg := smtpConfig()
	cfg.Enabled = false
	a := NewEmailAlerter(cfg)
	a.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("disabled alerter must not send")
		return nil
	}
	assert.NoError(t, a.Alert("subject", "body"))
}

func TestLogAlerter(t *testing.T) {
	var buf bytes.Buffer
	a := NewLogAlerter(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, a.Alert("Graph store unavailable", "breaker open"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `msg="Graph store unavailable"`)
	assert.Contains(t, buf.String(), `alert="breaker open"`)
}

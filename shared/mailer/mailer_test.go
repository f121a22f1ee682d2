package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:     "smtp.example.com",
		Port:     465,
		Username: "mailer",
		Password: "secret",
		From:     "no-reply@shop-it.dev",
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.Host = "" }, "SMTP_HOST"},
		{"missing port", func(c *Config) { c.Port = 0 }, "SMTP_PORT"},
		{"missing username", func(c *Config) { c.Username = "" }, "SMTP_USERNAME"},
		{"missing password", func(c *Config) { c.Password = "" }, "SMTP_PASSWORD"},
		{"missing from", func(c *Config) { c.From = "" }, "SMTP_FROM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			m, err := New(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, m)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewMessage_HTMLWithAlternative(t *testing.T) {
	m, err := New(validConfig())
	require.NoError(t, err)

	msg, err := m.newMessage(Email{
		To:       []string{"alice@example.com"},
		Cc:       []string{"bob@example.com"},
		Subject:  "Verify your Email",
		HTMLBody: "<h1>123456</h1>",
		Body:     "123456",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"no-reply@shop-it.dev"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"alice@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"bob@example.com"}, msg.GetHeader("Cc"))
	assert.Equal(t, []string{"Verify your Email"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
	assert.Contains(t, buf.String(), "text/plain")
}

func TestSend_NoRecipients(t *testing.T) {
	m, err := New(validConfig())
	require.NoError(t, err)

	err = m.SendHTML(nil, "subject", "<p>body</p>")
	assert.EqualError(t, err, "no recipients specified")
}

package mailer

import (
	"bytes"
	"testing"

	"perangkat-desa-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoopWithoutHost(t *testing.T) {
	n := New(config.SMTPOptions{})
	assert.IsType(t, Noop{}, n)
	assert.NoError(t, n.AkunDibuat("a@b.id", "A", "Klapa", "http://x"))

	assert.IsType(t, &SMTP{}, New(config.SMTPOptions{Host: "smtp.local", Port: 25}))
}

func TestNewAkunMessage(t *testing.T) {
	m := NewAkunMessage("no-reply@punggelan.go.id", "klapa@desa.id", "Admin Klapa", "Klapa", "http://localhost:3000")
	assert.Equal(t, []string{"Akun Admin Desa Klapa telah dibuat"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"klapa@desa.id"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Desa Klapa")
}

// Package mailer mengirim notifikasi email akun admin desa.
package mailer

import (
	"fmt"

	"perangkat-desa-backend/config"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// Notifier mengirim pemberitahuan akun baru.
type Notifier interface {
	AkunDibuat(to, nama, desa, appURL string) error
}

// New mengembalikan notifier SMTP jika SMTP_HOST diisi, selain itu Noop.
func New(opts config.SMTPOptions) Notifier {
	if !opts.Enabled() {
		return Noop{}
	}
	return &SMTP{
		from:   opts.From,
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password),
	}
}

type Noop struct{}

func (Noop) AkunDibuat(string, string, string, string) error { return nil }

type SMTP struct {
	from   string
	dialer *gomail.Dialer
}

func (s *SMTP) AkunDibuat(to, nama, desa, appURL string) error {
	return errors.Wrap(s.dialer.DialAndSend(NewAkunMessage(s.from, to, nama, desa, appURL)), "gagal mengirim email")
}

// NewAkunMessage menyusun email pemberitahuan akun admin desa. Password tidak
// pernah dikirim lewat email.
func NewAkunMessage(from, to, nama, desa, appURL string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Akun Admin Desa %s telah dibuat", desa))
	m.SetBody("text/plain", fmt.Sprintf(
		"Yth. %s,\n\nAkun admin untuk Desa %s telah dibuat dengan email %s.\n"+
			"Silakan login di %s menggunakan password yang diberikan oleh admin kecamatan.\n",
		nama, desa, to, appURL))
	return m
}

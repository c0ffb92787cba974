// internals/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"pmhub_backend/internals/configs"
)

// Mailer mengirim notifikasi teks polos lewat SMTP. Tanpa konfigurasi
// SMTP, Send mengembalikan error dan pemanggil cukup mencatatnya.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func New() *Mailer {
	return &Mailer{
		host:     configs.SMTPHost,
		port:     configs.SMTPPort,
		username: configs.SMTPUser,
		password: configs.SMTPPassword,
		from:     configs.SMTPFrom,
	}
}

func (m *Mailer) IsConfigured() bool {
	return m.host != "" && m.port != "" && m.from != ""
}

func (m *Mailer) Send(to []string, subject, body string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("SMTP belum dikonfigurasi")
	}
	if len(to) == 0 {
		return fmt.Errorf("penerima kosong")
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		m.from,
		subject,
		body,
	))

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, to, msg)
}

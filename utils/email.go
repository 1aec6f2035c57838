package utils

import (
	"fmt"
	"net/smtp"
)

// Mailer sends plain-text mail over SMTP with PLAIN auth.
type Mailer struct {
	Host string
	Port int
	From string
	Pass string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(host string, port int, from, pass string) *Mailer {
	return &Mailer{Host: host, Port: port, From: from, Pass: pass, send: smtp.SendMail}
}

// Enabled is false until a sender address is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.From != ""
}

func (m *Mailer) SendWelcome(toEmail, username string) error {
	msg := fmt.Sprintf(`From: %s
To: %s
Subject: Welcome to Wanderlust

Hi %s,

Your Wanderlust account is ready. Start exploring listings or share your own place.

Happy travels,
The Wanderlust Team
`, m.From, toEmail, username)

	return m.send(
		fmt.Sprintf("%s:%d", m.Host, m.Port),
		smtp.PlainAuth("", m.From, m.Pass, m.Host),
		m.From,
		[]string{toEmail},
		[]byte(msg),
	)
}

// Package mail sends transactional email over SMTP.
//
//	err := mail.To(user.Email).
//	    Subject("Pedido #42 recebido").
//	    Template(confirmationTmpl, data).
//	    Send()
//
// When MAIL_HOST is empty, messages are logged instead of sent so local
// checkouts work without an SMTP relay.
package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"sync"

	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/logger"
)

// ------------------- Config -------------------

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func defaultSMTP() SMTP {
	return SMTP{
		Host:     config.MailHost(),
		Port:     config.MailPort(),
		Username: config.MailUsername(),
		Password: config.MailPassword(),
		From:     config.MailFrom(),
		FromName: config.Get("MAIL_FROM_NAME", "Cupcakery"),
	}
}

// Sender delivers a built message. Swappable for tests.
type Sender interface {
	Send(cfg SMTP, from string, to []string, raw []byte) error
}

type smtpSender struct{}

var (
	senderMu sync.RWMutex
	sender   Sender = smtpSender{}
)

// UseSender replaces the transport and returns a func restoring the previous
// one.
func UseSender(s Sender) (restore func()) {
	senderMu.Lock()
	prev := sender
	sender = s
	senderMu.Unlock()
	return func() {
		senderMu.Lock()
		sender = prev
		senderMu.Unlock()
	}
}

// ------------------- Message -------------------

type Message struct {
	to      []string
	subject string
	body    string
	isHTML  bool
	err     error
	smtpCfg SMTP
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{
		to:      addresses,
		isHTML:  true,
		smtpCfg: defaultSMTP(),
	}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// Template renders tmpl with data as the HTML body. A render error is
// returned by Send.
func (m *Message) Template(tmpl *template.Template, data interface{}) *Message {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
		return m
	}
	m.body = buf.String()
	m.isHTML = true
	return m
}

// ------------------- Sending -------------------

func (m *Message) Send() error {
	if m.err != nil {
		return m.err
	}
	if len(m.to) == 0 || m.to[0] == "" {
		return fmt.Errorf("mail: no recipients")
	}

	cfg := m.smtpCfg
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)

	senderMu.RLock()
	s := sender
	senderMu.RUnlock()

	return s.Send(cfg, cfg.From, m.to, m.buildRaw(from))
}

func (smtpSender) Send(cfg SMTP, from string, to []string, raw []byte) error {
	if cfg.Host == "" {
		logger.Info("mail: MAIL_HOST not set, message not sent", "to", strings.Join(to, ","), "bytes", len(raw))
		return nil
	}

	addr := cfg.Host + ":" + cfg.Port
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	if cfg.Port == "465" {
		return sendTLS(addr, auth, from, to, raw, cfg.Host)
	}
	return smtp.SendMail(addr, auth, from, to, raw)
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

func (m *Message) buildRaw(from string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

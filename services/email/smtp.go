package emailsvc

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
)

type smtpService struct {
	addr             string
	auth             smtp.Auth
	tlsConf          *tls.Config
	timeout          time.Duration
	defaultFromEmail mail.Address
	subjPrefix       string
	logger           core.Logger
}

var _ core.EmailService = (*smtpService)(nil)

// NewSMTPService returns a backend that relays through the configured SMTP
// server, upgrading the connection with STARTTLS.
func NewSMTPService(conf *core.Config, logger core.Logger) (*smtpService, error) {
	tlsConf := &tls.Config{ServerName: conf.Mail.Host}
	if conf.Mail.CAFile != "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		pem, err := os.ReadFile(conf.Mail.CAFile)
		if err != nil {
			return nil, errors.Wrap(err, "reading CA file")
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in %s", conf.Mail.CAFile)
		}
		tlsConf.RootCAs = pool
	}

	var auth smtp.Auth
	if conf.Mail.Username != "" {
		auth = smtp.PlainAuth("", conf.Mail.Username, conf.Mail.Password, conf.Mail.Host)
	}

	return &smtpService{
		addr:             net.JoinHostPort(conf.Mail.Host, strconv.Itoa(conf.Mail.Port)),
		auth:             auth,
		tlsConf:          tlsConf,
		timeout:          conf.Mail.Timeout,
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		logger:           logger,
	}, nil
}

func (svc smtpService) Send(msg *core.EmailMessage) (string, error) {
	if !msg.HasRecipients() || !msg.HasContent() {
		return "", nil
	}

	msgID := fmt.Sprintf("<%s@%s>", uuid.New().String(), svc.tlsConf.ServerName)
	if err := svc.send(*msg, msgID); err != nil {
		svc.logger.Error(fmt.Sprintf("sending email: %v", err), err)
		return "", errors.Wrap(err, "smtp")
	}
	return msgID, nil
}

func (svc smtpService) send(msg core.EmailMessage, msgID string) error {
	conn, err := net.DialTimeout("tcp", svc.addr, svc.timeout)
	if err != nil {
		return errors.Wrap(err, "dialing")
	}
	_ = conn.SetDeadline(time.Now().Add(svc.timeout))

	c, err := smtp.NewClient(conn, svc.tlsConf.ServerName)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "handshake")
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err = c.StartTLS(svc.tlsConf); err != nil {
			return errors.Wrap(err, "starttls")
		}
	}
	if svc.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err = c.Auth(svc.auth); err != nil {
				return errors.Wrap(err, "auth")
			}
		}
	}

	if err = c.Mail(svc.defaultFromEmail.Address); err != nil {
		return errors.Wrap(err, "mail from")
	}
	for _, rcpt := range msg.Recipients() {
		if err = c.Rcpt(rcpt.Address); err != nil {
			return errors.Wrapf(err, "rcpt to %s", rcpt.Address)
		}
	}

	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "data")
	}
	if _, err = w.Write(svc.buildBody(msg, msgID)); err != nil {
		return errors.Wrap(err, "writing body")
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "closing body")
	}
	return c.Quit()
}

func (svc smtpService) buildBody(msg core.EmailMessage, msgID string) []byte {
	body := new(strings.Builder)
	boundary := uuid.New().String()

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		_, _ = fmt.Fprintf(body, "CC: %s\r\n", joinAddresses(msg.Cc))
	}
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "Message-ID: %s\r\n", msgID)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	_, _ = fmt.Fprint(body, "\r\n")

	_, _ = fmt.Fprintf(body, "--%s\r\n", boundary)
	_, _ = fmt.Fprint(body, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.TextContent)

	if msg.HTMLContent != "" {
		_, _ = fmt.Fprintf(body, "--%s\r\n", boundary)
		_, _ = fmt.Fprint(body, "Content-Type: text/html; charset=utf-8\r\n\r\n")
		_, _ = fmt.Fprintf(body, "%s\r\n", msg.HTMLContent)
	}
	_, _ = fmt.Fprintf(body, "--%s--\r\n", boundary)

	return []byte(body.String())
}

package core

import "net/mail"

type (
	// EmailMessage is a fully rendered outgoing email.
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// Send dispatches the message and returns the provider's message ID.
		Send(msg *EmailMessage) (string, error)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// Recipients returns all To and Cc addresses.
func (m *EmailMessage) Recipients() []mail.Address {
	all := make([]mail.Address, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	all = append(all, m.To...)
	all = append(all, m.Cc...)
	all = append(all, m.Bcc...)
	return all
}

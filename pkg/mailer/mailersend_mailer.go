package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

const dateLayout = "Mon, Jan 2 2006"

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	html, text := confirmationBody(c)
	return m.sendEmail(ctx, c.GuestEmail, c.GuestName, confirmationSubject(c), text, html)
}

func (m *MailerSendClient) sendEmail(ctx context.Context, toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}

func confirmationSubject(c BookingConfirmation) string {
	return fmt.Sprintf("Your Zenith reservation #%d", c.BookingID)
}

func confirmationBody(c BookingConfirmation) (html, text string) {
	name := c.GuestName
	if name == "" {
		name = "there"
	}
	html = fmt.Sprintf(`
		<h2>Thanks for your reservation!</h2>
		<p>Hi %s,</p>
		<p>Reservation <strong>#%d</strong> is stored and awaiting confirmation.</p>
		<p>%s &mdash; %s (%d nights, %d guests)</p>
		<p>Total: <strong>$%.2f</strong>, payable on arrival.</p>
	`, name, c.BookingID, c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout), c.NumNights, c.NumGuests, c.TotalPrice)

	text = fmt.Sprintf("Hi %s,\n\nReservation #%d: %s - %s (%d nights, %d guests). Total $%.2f, payable on arrival.",
		name, c.BookingID, c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout), c.NumNights, c.NumGuests, c.TotalPrice)
	return html, text
}

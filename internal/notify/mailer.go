package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// Mailer sends booking confirmation emails through MailerSend.
type Mailer struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// NewMailer constructs a Mailer.
func NewMailer(apiKey, fromName, fromEmail string) *Mailer {
	return &Mailer{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// SendBookingConfirmed emails the booking's user that their slot is confirmed.
func (m *Mailer) SendBookingConfirmed(ctx context.Context, to, eventTitle string, date time.Time, clock string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: to}})
	message.SetSubject("Booking Confirmed - " + eventTitle)
	message.SetHTML(confirmationHTML(eventTitle, date, clock))

	if _, err := m.client.Email.Send(ctx, message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func confirmationHTML(eventTitle string, date time.Time, clock string) string {
	return fmt.Sprintf(`<html><body>
<h1>Booking Confirmed</h1>
<p>Great news! Your booking has been confirmed.</p>
<h3>Booking Details</h3>
<p><strong>Event:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Time:</strong> %s</p>
<p>Please arrive 15 minutes before your scheduled time. If you need to make
any changes, please contact us.</p>
<p>This is an automated message. Please do not reply to this email.</p>
</body></html>`,
		eventTitle, date.Format("Monday, January 2, 2006"), formatClock(clock))
}

// formatClock rewrites a 24-hour "HH:MM" string as 12-hour with AM/PM.
// Anything unparseable is passed through untouched.
func formatClock(clock string) string {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return clock
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clock
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], suffix)
}

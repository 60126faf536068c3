package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"neontix/internal/shared/config"
	"neontix/pkg/logger"
)

// EmailSender delivers a notification to its recipient
type EmailSender interface {
	Send(ctx context.Context, notification *Notification) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func SMTPConfigFromEmailConfig(ec config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      ec.SMTPHost,
		Port:      ec.SMTPPort,
		Username:  ec.SMTPUsername,
		Password:  ec.SMTPPassword,
		FromEmail: ec.FromEmail,
		FromName:  "NeonTix",
	}
}

func (c *SMTPConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

const emailTemplates = `
{{define "BOOKING_CONFIRMED"}}<h2>Booking confirmed</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your booking for <strong>{{.EventTitle}}</strong> is confirmed.</p>
<p>Booking number: <strong>{{.BookingID}}</strong></p>
<p>Seats: {{join .SeatIDs ", "}}</p>
<p>Total paid: ${{.TotalAmount}}</p>
<p>See you at the show,<br>NeonTix</p>{{end}}
{{define "BOOKING_STATUS_CHANGED"}}<h2>Booking update</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your booking <strong>{{.BookingID}}</strong> for {{.EventTitle}} is now <strong>{{.BookingStatus}}</strong>.</p>
<p>NeonTix</p>{{end}}
{{define "default"}}<h2>{{.Subject}}</h2>
<p>Hi {{.RecipientName}},</p>
<p>NeonTix</p>{{end}}
`

var parsedTemplates = template.Must(template.New("email").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(emailTemplates))

// SMTPSender sends notifications through an SMTP relay
type SMTPSender struct {
	config   *SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg *SMTPConfig) (*SMTPSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPSender{config: cfg, sendMail: smtp.SendMail}, nil
}

func (s *SMTPSender) Send(ctx context.Context, n *Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	htmlBody, textBody, err := renderContent(n)
	if err != nil {
		return fmt.Errorf("failed to generate email content: %w", err)
	}

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// smtp.SendMail upgrades with STARTTLS when the server offers it
	if err := s.sendMail(addr, auth, s.config.FromEmail, []string{n.RecipientEmail}, s.buildMessage(n, htmlBody, textBody)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(n *Notification, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", n.RecipientEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

func renderContent(n *Notification) (string, string, error) {
	name := string(n.Type)
	if parsedTemplates.Lookup(name) == nil {
		name = "default"
	}

	var htmlBuf bytes.Buffer
	if err := parsedTemplates.ExecuteTemplate(&htmlBuf, name, n); err != nil {
		return "", "", err
	}

	return htmlBuf.String(), plainText(n), nil
}

func plainText(n *Notification) string {
	switch n.Type {
	case NotificationTypeBookingConfirmed:
		return fmt.Sprintf("Hi %s,\n\nYour booking for %s is confirmed.\nBooking number: %s\nSeats: %s\nTotal paid: $%d\n\nNeonTix",
			n.RecipientName, n.EventTitle, n.BookingID, strings.Join(n.SeatIDs, ", "), n.TotalAmount)
	case NotificationTypeBookingStatusChanged:
		return fmt.Sprintf("Hi %s,\n\nYour booking %s for %s is now %s.\n\nNeonTix",
			n.RecipientName, n.BookingID, n.EventTitle, n.BookingStatus)
	default:
		return fmt.Sprintf("Hi %s,\n\n%s\n\nNeonTix", n.RecipientName, n.Subject)
	}
}

// LogSender writes notifications to the log. Used when SMTP is not configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, n *Notification) error {
	s.log.InfoContext(ctx, "Email notification",
		"type", string(n.Type),
		"to", n.RecipientEmail,
		"subject", n.Subject,
		"booking_id", n.BookingID,
	)
	return nil
}

// NewEmailSender picks SMTP when a host is configured and the log sender otherwise
func NewEmailSender(ec config.EmailConfig, log *logger.Logger) (EmailSender, error) {
	if ec.SMTPHost == "" {
		return NewLogSender(log), nil
	}
	return NewSMTPSender(SMTPConfigFromEmailConfig(ec))
}

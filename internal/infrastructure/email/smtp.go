package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"bizhub/internal/domain/session"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// LoginAnomalyNotice describes a suspicious login to its account owner.
type LoginAnomalyNotice struct {
	To         string
	TenantName string
	IPAddress  string
	Device     string
	At         time.Time
	Findings   []session.Finding
}

type SMTPEmailService struct {
	config SMTPConfig
	sender sender
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	return &SMTPEmailService{
		config: config,
		sender: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (s *SMTPEmailService) SendLoginAnomalyEmail(notice LoginAnomalyNotice) error {
	subject := fmt.Sprintf("New sign-in to your %s account", notice.TenantName)
	if session.HasHighSeverity(notice.Findings) {
		subject = fmt.Sprintf("Unusual sign-in to your %s account", notice.TenantName)
	}

	var htmlItems, plainItems strings.Builder
	for _, f := range notice.Findings {
		fmt.Fprintf(&htmlItems, "<li>%s</li>", html.EscapeString(f.Message))
		fmt.Fprintf(&plainItems, "- %s\n", f.Message)
	}

	when := notice.At.UTC().Format("2006-01-02 15:04 MST")
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Sign-in from a new location or device</h2>
			<p>We noticed a sign-in to your account on %s from %s (%s).</p>
			<ul>%s</ul>
			<p>If this was you, no action is needed. Otherwise, sign out your other sessions and change your password.</p>
		</body>
		</html>
	`, when, html.EscapeString(notice.IPAddress), html.EscapeString(notice.Device), htmlItems.String())

	plainBody := fmt.Sprintf(`
Sign-in from a new location or device

We noticed a sign-in to your account on %s from %s (%s).

%s
If this was you, no action is needed. Otherwise, sign out your other sessions and change your password.
	`, when, notice.IPAddress, notice.Device, plainItems.String())

	return s.sendEmail(notice.To, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

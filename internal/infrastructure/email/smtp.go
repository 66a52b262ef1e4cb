package email

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPEmailService sends transactional billing mail. Sending is best effort;
// callers log failures and never roll back the payment over them.
type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

// SendPaymentReceipt confirms a successful payment and the new premium period.
func (s *SMTPEmailService) SendPaymentReceipt(to, tierName, orderID string, amount int64, premiumUntil time.Time) error {
	subject := "Your Melodia Premium Receipt"
	formattedAmount := formatVND(amount)
	until := premiumUntil.Format("January 2, 2006")

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Thanks for subscribing to Melodia Premium!</h2>
			<p>Your payment was received and your subscription is now active.</p>
			<ul>
				<li>Plan: %s</li>
				<li>Amount: %s</li>
				<li>Order: %s</li>
				<li>Premium until: %s</li>
			</ul>
			<p>Enjoy ad-free listening, offline downloads and lossless audio.</p>
		</body>
		</html>
	`, tierName, formattedAmount, orderID, until)

	plainBody := fmt.Sprintf(`
Thanks for subscribing to Melodia Premium!

Your payment was received and your subscription is now active.

Plan: %s
Amount: %s
Order: %s
Premium until: %s

Enjoy ad-free listening, offline downloads and lossless audio.
	`, tierName, formattedAmount, orderID, until)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

// SendExpiryNotice tells a user their premium period has ended.
func (s *SMTPEmailService) SendExpiryNotice(to, tierName string) error {
	subject := "Your Melodia Premium Has Expired"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Your Premium subscription has ended</h2>
			<p>Your %s subscription has expired and your account is back on the free plan.</p>
			<p>Resubscribe any time to get back ad-free listening and offline downloads.</p>
		</body>
		</html>
	`, tierName)

	plainBody := fmt.Sprintf(`
Your Premium subscription has ended

Your %s subscription has expired and your account is back on the free plan.

Resubscribe any time to get back ad-free listening and offline downloads.
	`, tierName)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// formatVND renders an amount in Vietnamese dong with local digit grouping.
func formatVND(amount int64) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprintf("%v ₫", number.Decimal(amount))
}

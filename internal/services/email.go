package services

import (
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"reviewhub/internal/config"
)

type EmailService struct {
	config *config.Config
}

// NewEmailService returns nil when SMTP credentials are absent; callers treat
// a nil service as "email disabled".
func NewEmailService(cfg *config.Config) *EmailService {
	if cfg.SMTPUsername == "" {
		return nil
	}
	return &EmailService{config: cfg}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}

// SendReviewApprovedEmail mirrors the in-app approval notification for users
// who registered with an email address.
func (s *EmailService) SendReviewApprovedEmail(to, productName string) error {
	subject := "Your review has been approved"
	body := fmt.Sprintf(`
		<h2>Review Approved</h2>
		<p>Your review for the product '%s' has been approved and is now visible to other shoppers.</p>
		<p>Thanks for sharing your experience!</p>
	`, productName)

	return s.SendEmail(to, subject, body)
}

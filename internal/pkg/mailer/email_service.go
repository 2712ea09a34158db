// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendCaseReady(toEmail, caseTitle, caseId string) error
	SendCaseFailed(toEmail, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendCaseReady(toEmail, caseTitle, caseId string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your case is ready, Detective")

	caseLink := fmt.Sprintf("%s/case/%s", s.frontendURL, caseId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A new case awaits</h2>
			<p>Your case <strong>%s</strong> has been generated and is ready to investigate.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open the Case</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, caseTitle, caseLink, caseLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send case-ready mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Case-ready mail sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendCaseFailed(toEmail, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Case generation failed")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>We could not generate your case</h2>
			<p>Something went wrong while writing your mystery: %s</p>
			<p>Please try again. No charge was made for this attempt.</p>
		</div>
	`, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send case-failed mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Case-failed mail sent to %s\n", toEmail)
	return nil
}

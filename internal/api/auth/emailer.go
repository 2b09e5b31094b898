package auth

import (
	"fmt"
	"net/smtp"

	"curio-server/config"
)

// SendPasswordResetEmail mails the reset link. Failures are reported to
// the caller, which logs them without exposing anything to the client.
func SendPasswordResetEmail(cfg config.SMTPConfig, to string, token string) error {
	if cfg.Host == "" {
		return fmt.Errorf("smtp not configured")
	}

	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)

	link := fmt.Sprintf("%s?token=%s", cfg.ResetURL, token)
	subject := "Password Reset"
	body := fmt.Sprintf("Use the following link to reset your password (valid for 1 hour):\n\n%s", link)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	return smtp.SendMail(cfg.Host+":"+cfg.Port, auth, cfg.From, []string{to}, message)
}

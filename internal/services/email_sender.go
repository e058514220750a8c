package services

import "fmt"

type EmailSender interface {
	Send(to string, subject string, body string) error
}

// PasswordResetEmail builds the reset mail pointing at the frontend's
// reset-password page with the raw token embedded in the link.
func PasswordResetEmail(baseURL string, token string) (subject string, body string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)
	subject = "Reset your password"
	body = "We received a request to reset your password.\n\n" +
		"Open the link below to choose a new one:\n\n" +
		link + "\n\n" +
		"The link expires in 24 hours. If you did not request this, you can ignore this email."
	return subject, body
}

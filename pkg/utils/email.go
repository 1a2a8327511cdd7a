package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "Uber Clone"
	frontendURL   = os.Getenv("FRONTEND_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #000000; padding: 20px;">
			<h2 style="color: #ffffff; margin: 0;">Uber Clone</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message)); err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	return nil
}

// SendVerificationEmail mails the email-verification link to a new account.
func SendVerificationEmail(email, name, token string) error {
	base := frontendURL
	if base == "" {
		base = "http://localhost:3000"
	}
	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", base, token)

	subject := "Verify Your Email - Uber Clone"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Welcome, %s!</h1>
					<p>Thanks for signing up. Please confirm your email address to finish setting up your account.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s" style="background-color: #00D9A5; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Verify Email</a>
					</div>
					<p>This link expires in 24 hours. If you did not create an account, you can ignore this email.</p>
				</div>`+emailFooter,
		name, verificationURL)

	return sendEmail([]string{email}, subject, body)
}

package usecase

import (
	"fmt"
	"time"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/model"
)

func otpEmail(purpose model.OTPPurpose, code string, expiresIn time.Duration) (subject, htmlBody string) {
	title := "Email Verification"
	subject = "Shop-It - Verify your Email"
	intro := "Your verification code is:"
	if purpose == model.OTPPurposePasswordReset {
		title = "Password Reset"
		subject = "Shop-It - Password Reset Code"
		intro = "We received a request to reset your password. Your reset code is:"
	}

	htmlBody = fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>%s</h2>
			<p>%s</p>
			<h1 style="color: #cc6300; font-size: 32px; text-align: center; letter-spacing: 5px;">%s</h1>
			<p>This code will expire in %s.</p>
			<p>If you didn't request this code, please ignore this email.</p>
		</div>
	`, title, intro, code, humanizeDuration(expiresIn))

	return subject, htmlBody
}

func passwordChangedEmail(firstName string) (subject, htmlBody string) {
	name := firstName
	if name == "" {
		name = "there"
	}

	subject = "Shop-It - Your password was changed"
	htmlBody = fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>The password for your Shop-It account was just changed.</p>
		<p>If you did not make this change, reset your password immediately and contact support.</p>
		<p>Thank you,</p>
		<p>Shop-It Team</p>
	`, name)

	return subject, htmlBody
}

func humanizeDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

package utils

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewMailer(apiKey, sender string) *Mailer {
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("PlayVault", sender),
	}
}

func (m *Mailer) send(toEmail, toName, subject, htmlBody string) error {
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(m.from, subject, to, "", htmlBody)

	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}
	return nil
}

// HTML wrapper for a consistent look across all transactional mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A1A2E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A1A2E; line-height: 1.6; }
			.content h2 { color: #1A1A2E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #4ECCA3; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4ECCA3; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>PLAYVAULT</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 PlayVault. All rights reserved.<br>
				Credits are redeemable at a fixed rate of $0.01 per credit.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendWelcomeEmail goes out once at signup.
func (m *Mailer) SendWelcomeEmail(email, name string) error {
	subject := "Welcome to PlayVault"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>PlayVault</strong>! Your account has been created.</p>
		<p>Purchase credits to get started, then jump into any of our partner game sites straight from your dashboard.</p>
	`, name)

	return m.send(email, name, subject, getEmailTemplate("Welcome Onboard!", body))
}

// SendPaymentLinkEmail tells the user their payment link is ready.
func (m *Mailer) SendPaymentLinkEmail(email, name, link string, credits int64) error {
	subject := "Your PlayVault Payment Link is Ready"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your request for <strong>%d credits</strong> is being processed.</p>
		<p>Complete your payment using the link below. Once we receive it, your credits will be added automatically.</p>
		<a href="%s" class="btn">Complete Payment</a>
	`, name, credits, link)

	return m.send(email, name, subject, getEmailTemplate("Payment Link Ready", body))
}

// SendPurchaseConfirmedEmail confirms credits were added.
func (m *Mailer) SendPurchaseConfirmedEmail(email, name string, credits int64, balance int64) error {
	subject := "Credits Added to Your Account"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your payment has been confirmed and <strong>%d credits</strong> were added to your account.</p>
		<div class="info-box">
			<strong>New balance:</strong> %d credits
		</div>
	`, name, credits, balance)

	return m.send(email, name, subject, getEmailTemplate("Payment Confirmed", body))
}

// SendRedemptionEmail acknowledges a redemption request.
func (m *Mailer) SendRedemptionEmail(email, name string, credits int64, usdValue float64) error {
	subject := "Redemption Request Received"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received your request to redeem <strong>%d credits</strong> ($%.2f).</p>
		<p>The credits have been deducted from your balance and your payout is being processed. You will hear from us once it is sent.</p>
	`, name, credits, usdValue)

	return m.send(email, name, subject, getEmailTemplate("Redemption Received", body))
}

// SendRedemptionLinkEmail shares the payout link for a redemption.
func (m *Mailer) SendRedemptionLinkEmail(email, name, link string) error {
	subject := "Your PlayVault Payout Link"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your payout is ready. Use the link below to collect it.</p>
		<a href="%s" class="btn">Collect Payout</a>
	`, name, link)

	return m.send(email, name, subject, getEmailTemplate("Payout Ready", body))
}

// SendRedemptionPaidEmail confirms the payout went out.
func (m *Mailer) SendRedemptionPaidEmail(email, name string, credits int64, usdValue float64) error {
	subject := "Redemption Paid Out"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your redemption of <strong>%d credits</strong> ($%.2f) has been paid out.</p>
		<p>Thanks for playing with PlayVault.</p>
	`, name, credits, usdValue)

	return m.send(email, name, subject, getEmailTemplate("Payout Sent", body))
}

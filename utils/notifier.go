package utils

import (
	"fmt"
	"log"

	"playvault/models"
)

// Notifier fans workflow events out to email and SMS. Dispatch is best-effort:
// every send runs in a goroutine and failures are logged, never surfaced — a
// notification failure must not roll back or block a ledger mutation. A nil
// Notifier is a no-op, which keeps tests and trimmed deployments simple.
type Notifier struct {
	Mail *Mailer
	SMS  *SMSClient
}

func NewNotifier(mail *Mailer, sms *SMSClient) *Notifier {
	return &Notifier{Mail: mail, SMS: sms}
}

func (n *Notifier) dispatch(event string, user models.User, emailFn func() error, smsText string) {
	if n == nil {
		return
	}
	go func() {
		if n.Mail != nil && user.Email != "" && emailFn != nil {
			if err := emailFn(); err != nil {
				log.Printf("[NOTIFY] %s email to %s failed: %v", event, user.Email, err)
			}
		}
		if n.SMS != nil && user.Mobile != "" && smsText != "" {
			if err := n.SMS.Send(user.Mobile, smsText); err != nil {
				log.Printf("[NOTIFY] %s SMS to %s failed: %v", event, user.Mobile, err)
			}
		}
	}()
}

func (n *Notifier) Welcome(user models.User) {
	n.dispatch("welcome", user, func() error {
		return n.Mail.SendWelcomeEmail(user.Email, user.Name)
	}, "")
}

func (n *Notifier) PaymentLinkAttached(user models.User, req models.CreditPurchaseRequest) {
	n.dispatch("payment-link", user, func() error {
		return n.Mail.SendPaymentLinkEmail(user.Email, user.Name, req.AdminURL, req.CreditsRequested)
	}, fmt.Sprintf("PlayVault: your payment link is ready: %s", req.AdminURL))
}

func (n *Notifier) PurchaseConfirmed(user models.User, req models.CreditPurchaseRequest) {
	n.dispatch("purchase-confirmed", user, func() error {
		return n.Mail.SendPurchaseConfirmedEmail(user.Email, user.Name, req.CreditsRequested, user.Credits)
	}, fmt.Sprintf("PlayVault: %d credits added to your account.", req.CreditsRequested))
}

func (n *Notifier) RedemptionRecorded(user models.User, txn models.Transaction) {
	n.dispatch("redemption-recorded", user, func() error {
		return n.Mail.SendRedemptionEmail(user.Email, user.Name, -txn.Amount, txn.USDValue)
	}, fmt.Sprintf("PlayVault: redemption of %d credits received, payout in progress.", -txn.Amount))
}

func (n *Notifier) RedemptionLinkAttached(user models.User, txn models.Transaction) {
	n.dispatch("redemption-link", user, func() error {
		return n.Mail.SendRedemptionLinkEmail(user.Email, user.Name, txn.AdminURL)
	}, fmt.Sprintf("PlayVault: your payout link is ready: %s", txn.AdminURL))
}

func (n *Notifier) RedemptionPaid(user models.User, txn models.Transaction) {
	n.dispatch("redemption-paid", user, func() error {
		return n.Mail.SendRedemptionPaidEmail(user.Email, user.Name, -txn.Amount, txn.USDValue)
	}, fmt.Sprintf("PlayVault: your payout of $%.2f has been sent.", txn.USDValue))
}

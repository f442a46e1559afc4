package utils

import (
	"log"
	"time"

	"playvault/services/ledger"

	"github.com/robfig/cron/v3"
)

// logAudit logs audit events with timestamp
func logAudit(message string) {
	log.Printf("[LEDGER-AUDIT %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartLedgerAudit schedules an hourly pass over every user, re-checking that
// the stored balance equals the sum of their transaction amounts. Read-only;
// drift is logged for staff follow-up, never auto-corrected.
func StartLedgerAudit(led *ledger.Ledger) *cron.Cron {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		RunLedgerAudit(led)
	})
	c.Start()
	return c
}

// RunLedgerAudit performs a single audit pass.
func RunLedgerAudit(led *ledger.Ledger) {
	logAudit("Starting ledger audit...")

	drifted, err := led.AuditAll()
	if err != nil {
		logAudit("Audit failed: " + err.Error())
		return
	}

	if len(drifted) == 0 {
		logAudit("Audit complete: all balances match their ledgers.")
		return
	}

	for _, r := range drifted {
		log.Printf("[LEDGER-AUDIT %s] DRIFT user=%d email=%s credits=%d ledgerSum=%d",
			time.Now().Format(time.RFC3339), r.UserID, r.Email, r.Credits, r.LedgerSum)
	}
}

package types

import "time"

// Audit outcomes.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// AuditEntry records one privacy-gated decision point. Entries are appended
// for every gate evaluation, denied or allowed, and for every PII evidence
// item included in a run.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor_decision"`
	Gate      string    `json:"gate_name"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason"`
}

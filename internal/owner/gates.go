// Package owner builds the privacy-gated ownership estimate: gate decisions,
// evidence associations, a rule-table classifier, and an explainable
// confidence score.
package owner

import (
	"encoding/json"
	"time"

	"phonescope/pkg/types"
)

// Association labels.
const (
	LabelScamReport   = "scam_report"
	LabelBusiness     = "business_listing"
	LabelClassified   = "classified_ad"
	LabelIdentity     = "identity_confirmed"
	LabelMention      = "mention"
	piiEvidenceGate   = "pii_evidence"
	deniedCredentials = "credentials are not configured"
	deniedDisabled    = "adapter is disabled in configuration"
	deniedConsent     = "explicit consent with a named purpose was not supplied"
)

// EvaluateGate decides whether one PII-capable adapter may run. Conditions
// are checked in a fixed order and the first unmet one becomes the denial
// reason. The decision is always audited, allowed or denied, whether or not
// the adapter was requested.
func EvaluateGate(adapterName string, enabled, hasCredentials bool, consent types.Consent, now time.Time) (bool, types.AuditEntry) {
	entry := types.AuditEntry{
		Timestamp: now.UTC(),
		Actor:     consent.ActorLabel(),
		Gate:      adapterName,
	}

	switch {
	case !hasCredentials:
		entry.Outcome = types.OutcomeDenied
		entry.Reason = deniedCredentials
	case !enabled:
		entry.Outcome = types.OutcomeDenied
		entry.Reason = deniedDisabled
	case !consent.Granted || consent.Purpose == "":
		entry.Outcome = types.OutcomeDenied
		entry.Reason = deniedConsent
	default:
		entry.Outcome = types.OutcomeAllowed
		entry.Reason = "credentials, enable flag, and consent all present; purpose: " + consent.Purpose
	}
	return entry.Outcome == types.OutcomeAllowed, entry
}

// PIIAuditEntries records every PII evidence item included in a run. The
// item is carried verbatim in the entry so the trail alone reconstructs what
// personal data left the adapters.
func PIIAuditEntries(items []types.EvidenceItem, consent types.Consent, now time.Time) []types.AuditEntry {
	var entries []types.AuditEntry
	for _, item := range items {
		if !item.PII {
			continue
		}
		payload, err := json.Marshal(item)
		if err != nil {
			payload = []byte(`{"source":"` + item.Source + `"}`)
		}
		entries = append(entries, types.AuditEntry{
			Timestamp: now.UTC(),
			Actor:     consent.ActorLabel(),
			Gate:      piiEvidenceGate,
			Outcome:   types.OutcomeAllowed,
			Reason:    string(payload),
		})
	}
	return entries
}

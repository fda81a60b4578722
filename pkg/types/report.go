package types

import "time"

// Report is the sole output surface handed to exporters. It is immutable
// after construction; exporters read it, never reinterpret it.
type Report struct {
	ReportID    string         `json:"report_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Subject     string         `json:"subject"`
	Enrichment  Enrichment     `json:"enrichment"`
	Evidence    []EvidenceItem `json:"evidence"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	Signals     []Signal       `json:"signals"`
	Score       ScoreResult    `json:"score"`
	Owner       OwnerIntel     `json:"owner_intelligence"`
	AuditTrail  []AuditEntry   `json:"audit_trail"`
	Summary     string         `json:"executive_summary"`
	ExampleMode bool           `json:"example_mode"`
}

// Package report assembles the final immutable report handed to exporters.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phonescope/pkg/types"
)

// Input carries everything one lookup run produced.
type Input struct {
	Enrichment  types.Enrichment
	Evidence    []types.EvidenceItem
	Diagnostics []types.Diagnostic
	Signals     []types.Signal
	Score       types.ScoreResult
	Owner       types.OwnerIntel
	AuditTrail  []types.AuditEntry
	ExampleMode bool
}

// Builder stamps reports with IDs and generation times. Both sources are
// injectable so tests can pin them.
type Builder struct {
	NewID func() string
	Now   func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{NewID: uuid.NewString, Now: time.Now}
}

// Build assembles the report. Empty evidence slices are materialized so the
// JSON always carries an array, never null.
func (b *Builder) Build(in Input) types.Report {
	evidence := in.Evidence
	if evidence == nil {
		evidence = []types.EvidenceItem{}
	}
	signals := in.Signals
	if signals == nil {
		signals = []types.Signal{}
	}
	audit := in.AuditTrail
	if audit == nil {
		audit = []types.AuditEntry{}
	}

	r := types.Report{
		ReportID:    b.NewID(),
		GeneratedAt: b.Now().UTC(),
		Subject:     in.Enrichment.E164,
		Enrichment:  in.Enrichment,
		Evidence:    evidence,
		Diagnostics: in.Diagnostics,
		Signals:     signals,
		Score:       in.Score,
		Owner:       in.Owner,
		AuditTrail:  audit,
		ExampleMode: in.ExampleMode,
	}
	r.Summary = Summarize(r)
	return r
}

// Summarize writes the one-paragraph executive summary.
func Summarize(r types.Report) string {
	scamMatch := "no"
	for _, s := range r.Signals {
		if s.Name == types.SignalScamDB && s.Bool {
			scamMatch = "yes"
			break
		}
	}
	summary := fmt.Sprintf(
		"Risk score %d/%d. Matched scam dataset: %s. Evidence items: %d. Owner classification: %s (confidence %.2f).",
		int(r.Score.Total+0.5), int(r.Score.Ceiling), scamMatch, len(r.Evidence), r.Owner.Type, r.Owner.Confidence,
	)
	if r.ExampleMode {
		summary += " Generated against the embedded sample dataset."
	}
	return summary
}

// EncodeJSON renders the report with stable two-space indentation. Encoding
// is deterministic for a given report.
func EncodeJSON(r types.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

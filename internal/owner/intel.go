package owner

import (
	"encoding/json"
	"fmt"
	"time"

	"phonescope/internal/config"
	"phonescope/pkg/types"
)

const (
	countCap      = 3.0
	confidenceMax = 100.0
)

// Build derives the ownership estimate from collected evidence. piiAllowed
// reflects the gate decision for this run; PII items present in the evidence
// are ignored for classification when it is false.
func Build(evidence []types.EvidenceItem, voip, piiAllowed bool, domains config.DomainListsConfig, weights map[string]float64) types.OwnerIntel {
	associations := Associations(evidence, domains)
	pii := extractPII(evidence, piiAllowed)
	signals := extractSignals(evidence, associations, voip, pii != nil)

	ownerType := classify(pii, voip, associations)
	confidence, breakdown := scoreConfidence(ownerType, signals, weights)

	return types.OwnerIntel{
		Type:         ownerType,
		Confidence:   confidence,
		Breakdown:    breakdown,
		Associations: associations,
		Signals:      signals,
		PIIAllowed:   piiAllowed,
		PII:          pii,
	}
}

// extractPII returns the first confirmed owner identity, or nil. Gated runs
// never surface identity data even if an item slipped into the evidence.
func extractPII(evidence []types.EvidenceItem, piiAllowed bool) *types.OwnerPII {
	if !piiAllowed {
		return nil
	}
	for _, item := range evidence {
		if item.Kind != types.KindOwnerRecord || !item.PII || len(item.Raw) == 0 {
			continue
		}
		var pii types.OwnerPII
		if err := json.Unmarshal(item.Raw, &pii); err != nil || pii.Name == "" {
			continue
		}
		if pii.Category == "" {
			pii.Category = types.OwnerUnknown
		}
		return &pii
	}
	return nil
}

// classify applies the rule table in precedence order: confirmed identity,
// then voip, business, individual, unknown.
func classify(pii *types.OwnerPII, voip bool, associations []types.OwnerAssociation) string {
	if pii != nil {
		return pii.Category
	}
	if voip {
		return types.OwnerVOIP
	}
	labels := make(map[string]bool, len(associations))
	for _, a := range associations {
		labels[a.Label] = true
	}
	if labels[LabelBusiness] {
		return types.OwnerBusiness
	}
	if labels[LabelClassified] {
		return types.OwnerIndividual
	}
	return types.OwnerUnknown
}

func extractSignals(evidence []types.EvidenceItem, associations []types.OwnerAssociation, voip, piiPresent bool) types.OwnerSignals {
	s := types.OwnerSignals{
		VOIP:          voip,
		EvidenceCount: len(evidence),
		PIIPresent:    piiPresent,
	}

	sources := make(map[string]bool)
	for _, item := range evidence {
		if item.Source != "" {
			sources[item.Source] = true
		}
	}
	s.SourcesCount = len(sources)

	for _, a := range associations {
		switch a.Label {
		case LabelBusiness:
			s.BusinessListings++
		case LabelClassified:
			s.ClassifiedAds++
		case LabelScamReport:
			s.ScamReports++
		}
	}
	s.FoundInScamDB = s.ScamReports > 0

	var first, last time.Time
	for _, item := range evidence {
		if item.ObservedAt.IsZero() {
			continue
		}
		if first.IsZero() || item.ObservedAt.Before(first) {
			first = item.ObservedAt
		}
		if last.IsZero() || item.ObservedAt.After(last) {
			last = item.ObservedAt
		}
	}
	if !first.IsZero() {
		s.FirstSeen = first.UTC().Format(time.RFC3339)
		s.LastSeen = last.UTC().Format(time.RFC3339)
	}
	return s
}

// scoreConfidence applies the rule table and normalizes the clamped total to
// [0,1]. Counted rules cap their value so one prolific source cannot saturate
// the confidence on its own.
func scoreConfidence(ownerType string, s types.OwnerSignals, weights map[string]float64) (float64, []types.ConfidenceEntry) {
	var breakdown []types.ConfidenceEntry

	add := func(rule string, value, cap float64, explanation string) {
		if cap > 0 && value > cap {
			value = cap
		}
		weight := weights[rule]
		breakdown = append(breakdown, types.ConfidenceEntry{
			Rule:         rule,
			Weight:       weight,
			Value:        value,
			Contribution: weight * value,
			Explanation:  explanation,
		})
	}

	if s.EvidenceCount > 0 {
		add("evidence_any", 1, 0, "at least one public evidence item was found")
	}
	if s.SourcesCount >= 2 {
		add("multiple_sources", 1, 0, "evidence spans multiple sources")
	}

	switch ownerType {
	case types.OwnerVOIP:
		v := 0.0
		if s.VOIP {
			v = 1.0
		}
		add("voip", v, 0, "number metadata indicates a VOIP line")
	case types.OwnerBusiness:
		add("business_listing", float64(s.BusinessListings), countCap,
			fmt.Sprintf("%d business directory reference(s)", s.BusinessListings))
	case types.OwnerIndividual:
		add("classified_ad", float64(s.ClassifiedAds), countCap,
			fmt.Sprintf("%d classified ad reference(s)", s.ClassifiedAds))
	}

	if s.ScamReports > 0 {
		add("scam_report", float64(s.ScamReports), countCap,
			"scam reports mention this number; weak ownership-type evidence")
	}
	if s.PIIPresent {
		add("pii_confirmed", 1, 0, "a consented adapter returned a confirmed owner identity")
	}

	var raw float64
	for _, e := range breakdown {
		raw += e.Contribution
	}
	if raw < 0 {
		raw = 0
	}
	if raw > confidenceMax {
		raw = confidenceMax
	}
	return raw / confidenceMax, breakdown
}

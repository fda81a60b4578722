package owner

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"phonescope/internal/config"
	"phonescope/pkg/types"
)

var testDomains = config.DefaultConfig().Domains

func TestEvaluateGateOrderAndOutcomes(t *testing.T) {
	now := time.Now()
	consent := types.Consent{Granted: true, Purpose: "fraud investigation", Caller: "analyst@example"}

	allowed, entry := EvaluateGate("truecaller", true, true, consent, now)
	if !allowed || entry.Outcome != types.OutcomeAllowed {
		t.Fatalf("expected allowed, got %+v", entry)
	}
	if entry.Gate != "truecaller" || entry.Actor != "analyst@example" {
		t.Fatalf("unexpected entry metadata: %+v", entry)
	}

	// Missing credentials wins over every later condition.
	allowed, entry = EvaluateGate("truecaller", false, false, types.Consent{}, now)
	if allowed || entry.Reason != deniedCredentials {
		t.Fatalf("expected credentials denial, got %+v", entry)
	}

	allowed, entry = EvaluateGate("truecaller", false, true, consent, now)
	if allowed || entry.Reason != deniedDisabled {
		t.Fatalf("expected disabled denial, got %+v", entry)
	}

	allowed, entry = EvaluateGate("truecaller", true, true, types.Consent{Granted: true}, now)
	if allowed || entry.Reason != deniedConsent {
		t.Fatalf("purpose-less consent must deny, got %+v", entry)
	}
	if entry.Actor != "unknown" {
		t.Fatalf("anonymous caller must audit as unknown, got %q", entry.Actor)
	}
}

func TestPIIAuditEntriesCarryTheItemVerbatim(t *testing.T) {
	raw, _ := json.Marshal(types.OwnerPII{Name: "Jordan Example", Source: "truecaller", Category: "individual"})
	items := []types.EvidenceItem{
		{Source: "duckduckgo", Kind: types.KindSearchResult},
		{Source: "truecaller", Kind: types.KindOwnerRecord, PII: true, Raw: raw},
	}

	entries := PIIAuditEntries(items, types.Consent{Caller: "analyst"}, time.Now())
	if len(entries) != 1 {
		t.Fatalf("only PII items are audited, got %d entries", len(entries))
	}
	e := entries[0]
	if e.Gate != "pii_evidence" || e.Outcome != types.OutcomeAllowed {
		t.Fatalf("unexpected entry: %+v", e)
	}
	var copied types.EvidenceItem
	if err := json.Unmarshal([]byte(e.Reason), &copied); err != nil {
		t.Fatalf("reason must be the item as JSON: %v", err)
	}
	if copied.Source != "truecaller" || !copied.PII {
		t.Fatalf("item not carried verbatim: %+v", copied)
	}
}

func TestRedactSnippet(t *testing.T) {
	in := "Contact Jane.Doe+sales@Example.COM or call"
	out := RedactSnippet(in)
	if strings.Contains(out, "@") {
		t.Fatalf("email survived redaction: %q", out)
	}
	if !strings.Contains(out, "[REDACTED_EMAIL]") {
		t.Fatalf("redaction marker missing: %q", out)
	}
	if got := RedactSnippet("no addresses here"); got != "no addresses here" {
		t.Fatalf("plain text must pass through, got %q", got)
	}
}

func TestLabelPrecedence(t *testing.T) {
	cases := []struct {
		item types.EvidenceItem
		want string
	}{
		{types.EvidenceItem{Kind: types.KindOwnerRecord, PII: true}, LabelIdentity},
		{types.EvidenceItem{Kind: types.KindDatasetMatch, URL: "https://yelp.com/biz/x"}, LabelScamReport},
		{types.EvidenceItem{Kind: types.KindSearchResult, URL: "scamdb://some/source"}, LabelScamReport},
		{types.EvidenceItem{Kind: types.KindSearchResult, URL: "https://www.yelp.com/biz/x"}, LabelBusiness},
		{types.EvidenceItem{Kind: types.KindSearchResult, URL: "https://sfbay.craigslist.org/x"}, LabelClassified},
		{types.EvidenceItem{Kind: types.KindSearchResult, URL: "https://example.com/x"}, LabelMention},
	}
	for _, c := range cases {
		if got := Label(c.item, testDomains); got != c.want {
			t.Fatalf("Label(%+v) = %q, want %q", c.item, got, c.want)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	pii := &types.OwnerPII{Name: "x", Category: types.OwnerIndividual}
	biz := []types.OwnerAssociation{{Label: LabelBusiness}}
	ads := []types.OwnerAssociation{{Label: LabelClassified}}

	if got := classify(pii, true, biz); got != types.OwnerIndividual {
		t.Fatalf("pii must win: %q", got)
	}
	if got := classify(nil, true, biz); got != types.OwnerVOIP {
		t.Fatalf("voip must beat business: %q", got)
	}
	if got := classify(nil, false, append(biz, ads...)); got != types.OwnerBusiness {
		t.Fatalf("business must beat individual: %q", got)
	}
	if got := classify(nil, false, ads); got != types.OwnerIndividual {
		t.Fatalf("classified ads imply individual: %q", got)
	}
	if got := classify(nil, false, nil); got != types.OwnerUnknown {
		t.Fatalf("no rules fired: %q", got)
	}
}

func TestBuildBusinessConfidence(t *testing.T) {
	observed := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	evidence := []types.EvidenceItem{
		{Source: "duckduckgo", Kind: types.KindSearchResult, URL: "https://www.yelp.com/biz/a", ObservedAt: observed},
		{Source: "google", Kind: types.KindSearchResult, URL: "https://www.yelp.com/biz/b", ObservedAt: observed.Add(time.Hour)},
	}

	intel := Build(evidence, false, false, testDomains, config.DefaultOwnerWeights())
	if intel.Type != types.OwnerBusiness {
		t.Fatalf("expected business, got %q", intel.Type)
	}
	if intel.Signals.BusinessListings != 2 || intel.Signals.SourcesCount != 2 {
		t.Fatalf("unexpected signals: %+v", intel.Signals)
	}
	if intel.Signals.FirstSeen == "" || intel.Signals.LastSeen == "" {
		t.Fatalf("seen range not populated: %+v", intel.Signals)
	}

	// evidence_any 5 + multiple_sources 10 + business_listing 15*2 = 45.
	if intel.Confidence != 0.45 {
		t.Fatalf("expected confidence 0.45, got %v", intel.Confidence)
	}
	if intel.PII != nil || intel.PIIAllowed {
		t.Fatalf("no PII expected: %+v", intel)
	}
}

func TestBuildConfidenceCaps(t *testing.T) {
	observed := time.Now()
	var evidence []types.EvidenceItem
	for i := 0; i < 5; i++ {
		evidence = append(evidence, types.EvidenceItem{
			Source: "duckduckgo", Kind: types.KindSearchResult,
			URL: "https://www.yelp.com/biz/x", ObservedAt: observed,
		})
	}

	intel := Build(evidence, false, false, testDomains, config.DefaultOwnerWeights())
	for _, e := range intel.Breakdown {
		if e.Rule == "business_listing" && e.Value != 3 {
			t.Fatalf("count must cap at 3, got %v", e.Value)
		}
	}
}

func TestBuildWithPII(t *testing.T) {
	raw, _ := json.Marshal(types.OwnerPII{Name: "Jordan Example", Source: "truecaller", Category: types.OwnerIndividual})
	evidence := []types.EvidenceItem{
		{Source: "truecaller", Kind: types.KindOwnerRecord, PII: true, Raw: raw, ObservedAt: time.Now()},
	}

	intel := Build(evidence, false, true, testDomains, config.DefaultOwnerWeights())
	if intel.Type != types.OwnerIndividual {
		t.Fatalf("confirmed identity must set the type: %q", intel.Type)
	}
	if intel.PII == nil || intel.PII.Name != "Jordan Example" {
		t.Fatalf("pii missing: %+v", intel.PII)
	}
	if !intel.Signals.PIIPresent {
		t.Fatalf("pii_present signal not set: %+v", intel.Signals)
	}

	// The same evidence without permission never surfaces identity data.
	gated := Build(evidence, false, false, testDomains, config.DefaultOwnerWeights())
	if gated.PII != nil || gated.Signals.PIIPresent {
		t.Fatalf("gated run leaked PII: %+v", gated)
	}
	if gated.Type == types.OwnerIndividual {
		t.Fatalf("gated run must not classify from PII: %q", gated.Type)
	}
}

package types

import "time"

// Ownership classifications, listed in precedence order (a confirmed identity
// record wins, then voip, business, individual, unknown).
const (
	OwnerBusiness   = "business"
	OwnerIndividual = "individual"
	OwnerVOIP       = "voip"
	OwnerUnknown    = "unknown"
)

// OwnerAssociation links one evidence item to the ownership estimate with a
// coarse label (scam_report, business_listing, classified_ad,
// identity_confirmed, mention).
type OwnerAssociation struct {
	Source     string    `json:"source"`
	URL        string    `json:"url,omitempty"`
	Snippet    string    `json:"snippet,omitempty"`
	Label      string    `json:"label"`
	ObservedAt time.Time `json:"observed_at"`
}

// OwnerPII is a confirmed owner identity from a PII-capable adapter. It only
// appears in a report when every privacy gate passed.
type OwnerPII struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Category string `json:"owner_category"`
}

// OwnerSignals are the raw counts the classifier and confidence scorer work
// from.
type OwnerSignals struct {
	FoundInScamDB    bool   `json:"found_in_scam_db"`
	BusinessListings int    `json:"business_listing_count"`
	ClassifiedAds    int    `json:"classified_ads_count"`
	ScamReports      int    `json:"scam_report_count"`
	VOIP             bool   `json:"voip"`
	EvidenceCount    int    `json:"evidence_count"`
	SourcesCount     int    `json:"sources_count"`
	FirstSeen        string `json:"first_seen,omitempty"`
	LastSeen         string `json:"last_seen,omitempty"`
	PIIPresent       bool   `json:"pii_present"`
}

// ConfidenceEntry explains one rule's contribution to the owner confidence.
type ConfidenceEntry struct {
	Rule         string  `json:"rule"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// OwnerIntel is the privacy-gated ownership estimate. Confidence is in [0,1].
type OwnerIntel struct {
	Type         string             `json:"type"`
	Confidence   float64            `json:"confidence"`
	Breakdown    []ConfidenceEntry  `json:"confidence_breakdown"`
	Associations []OwnerAssociation `json:"associations,omitempty"`
	Signals      OwnerSignals       `json:"signals"`
	PIIAllowed   bool               `json:"pii_allowed"`
	PII          *OwnerPII          `json:"pii,omitempty"`
}

package types

import (
	"encoding/json"
	"time"
)

// Evidence kinds.
const (
	KindDatasetMatch   = "dataset_match"
	KindSearchResult   = "search_result"
	KindOwnerRecord    = "owner_record"
	KindSignalOverride = "signal_override"
)

// EvidenceItem is one unit of externally observed information about a
// subject. Items are immutable once created; corrections are new items.
type EvidenceItem struct {
	Source     string          `json:"source"`
	Kind       string          `json:"kind"`
	Title      string          `json:"title"`
	URL        string          `json:"url_or_reference"`
	Snippet    string          `json:"snippet,omitempty"`
	ObservedAt time.Time       `json:"observed_at"`
	Raw        json.RawMessage `json:"raw_payload,omitempty"`
	PII        bool            `json:"pii,omitempty"`
}

// Diagnostic records a non-fatal adapter failure attached to the report.
type Diagnostic struct {
	Adapter string `json:"adapter"`
	Reason  string `json:"reason"`
}

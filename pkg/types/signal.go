package types

// Signal names, in the engine's fixed evaluation order.
const (
	SignalScamDB      = "found_in_scam_db"
	SignalVOIP        = "voip"
	SignalClassifieds = "found_in_classifieds"
	SignalBusiness    = "business_listing"
	SignalMentionAge  = "age_of_first_mention_per_year"
)

// Signal is a named derived fact used as scoring input. Boolean signals carry
// value 0 or 1; numeric signals use their documented unit (e.g. capped years
// for the first-mention age).
type Signal struct {
	Name      string   `json:"name"`
	Value     float64  `json:"value"`
	Bool      bool     `json:"bool_value"`
	Numeric   bool     `json:"numeric,omitempty"`
	Rationale string   `json:"rationale"`
	Evidence  []string `json:"contributing_evidence,omitempty"`
}

// ScoreEntry explains one signal's contribution to the total.
type ScoreEntry struct {
	Signal       string  `json:"signal_name"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// ScoreResult is the final risk score with a full per-signal breakdown. Every
// signal the engine evaluated appears exactly once, including entries with a
// zero contribution.
type ScoreResult struct {
	Total     float64      `json:"total"`
	Floor     float64      `json:"floor"`
	Ceiling   float64      `json:"ceiling"`
	Breakdown []ScoreEntry `json:"breakdown"`
}

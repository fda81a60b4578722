package types

// Consent is the caller's lawful-purpose statement for PII-capable lookups.
// Both an affirmative flag and a named purpose are required before any
// PII-capable adapter runs.
type Consent struct {
	Purpose string `json:"purpose"`
	Granted bool   `json:"consent_obtained"`
	Caller  string `json:"caller"`
}

// ActorLabel identifies the deciding caller for audit entries.
func (c Consent) ActorLabel() string {
	if c.Caller == "" {
		return "unknown"
	}
	return c.Caller
}

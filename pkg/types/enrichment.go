package types

import (
	"errors"
	"strings"
)

// Enrichment is the record handed to the core by the external phone-number
// normalizer. The core treats it as already validated; only the E.164 subject
// is checked before a lookup runs.
type Enrichment struct {
	E164                string   `json:"e164"`
	NationalFormat      string   `json:"national_format"`
	InternationalFormat string   `json:"international_format"`
	RegionISO           string   `json:"region_iso"`
	CountryCallingCode  int      `json:"country_calling_code"`
	Carrier             string   `json:"carrier,omitempty"`
	Timezones           []string `json:"timezones,omitempty"`
	NumberType          string   `json:"number_type"`
}

var ErrInvalidSubject = errors.New("subject is not an E.164 number")

// Validate checks the minimum the pipeline needs: a plausible E.164 subject.
// A missing carrier is a normal condition, not an error.
func (e Enrichment) Validate() error {
	s := strings.TrimSpace(e.E164)
	if len(s) < 3 || !strings.HasPrefix(s, "+") {
		return ErrInvalidSubject
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return ErrInvalidSubject
		}
	}
	return nil
}

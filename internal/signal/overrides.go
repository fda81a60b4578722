package signal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Overrides forces a signal true for listed subjects, keyed by signal name.
// Used for reproducible demos and tests; every override leaves a synthetic
// evidence item behind so the report stays self-explanatory.
type Overrides map[string]map[string]bool

// LoadOverrides reads the override file, mapping signal names to lists of
// E.164 subjects. A missing file means no overrides; a malformed file is an
// error, so a typo cannot silently drop a forced signal.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	// #nosec G304 -- path is operator-provided configuration.
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return nil, fmt.Errorf("signal overrides: %w", err)
	}

	var parsed map[string][]string
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("signal overrides must map signal name to subjects: %w", err)
	}

	out := make(Overrides, len(parsed))
	for name, subjects := range parsed {
		set := make(map[string]bool, len(subjects))
		for _, s := range subjects {
			s = strings.TrimSpace(s)
			if s != "" {
				set[s] = true
			}
		}
		out[name] = set
	}
	return out, nil
}

// Forced reports whether the override table forces name true for subject.
func (o Overrides) Forced(name, subject string) bool {
	return o[name][subject]
}

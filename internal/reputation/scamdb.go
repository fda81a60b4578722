package reputation

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"phonescope/pkg/types"
)

// Sample dataset for offline testing and demos. Real investigations should
// point scam_db.dataset_path at a dataset the operator has rights to use.
//
//go:embed data/scam_list.json
var sampleScamList []byte

type ScamEntry struct {
	E164         string `json:"e164"`
	Label        string `json:"label"`
	Source       string `json:"source"`
	ReferenceURL string `json:"reference_url"`
	LastSeen     string `json:"last_seen,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ScamDBAdapter matches subjects against a JSON scam dataset. Matches use
// exact E.164 comparison only.
type ScamDBAdapter struct {
	entries []ScamEntry
	sample  bool
	now     func() time.Time
}

const ScamDBName = "scam_db"

// NewScamDB loads the dataset at path, or the embedded sample when path is
// empty. Runs against the sample are flagged so reports can carry
// example_mode.
func NewScamDB(path string) (*ScamDBAdapter, error) {
	raw := sampleScamList
	sample := true
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scam dataset: %w", err)
		}
		raw = data
		sample = false
	}

	var entries []ScamEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("scam dataset must be a JSON array: %w", err)
	}
	return &ScamDBAdapter{entries: entries, sample: sample, now: time.Now}, nil
}

func (a *ScamDBAdapter) Name() string     { return ScamDBName }
func (a *ScamDBAdapter) Host() string     { return "" }
func (a *ScamDBAdapter) PIICapable() bool { return false }

// SampleDataset reports whether the adapter runs against the embedded demo
// dataset rather than an operator-provided one.
func (a *ScamDBAdapter) SampleDataset() bool { return a.sample }

func (a *ScamDBAdapter) Lookup(_ context.Context, subject string) ([]types.EvidenceItem, error) {
	observed := a.now().UTC()
	var out []types.EvidenceItem
	for _, e := range a.entries {
		if e.E164 != subject {
			continue
		}
		ref := e.ReferenceURL
		if ref == "" {
			ref = "scamdb://" + e.Source
		}
		var snippetParts []string
		if e.LastSeen != "" {
			snippetParts = append(snippetParts, "last_seen="+e.LastSeen)
		}
		if e.Notes != "" {
			snippetParts = append(snippetParts, e.Notes)
		}
		raw, _ := json.Marshal(e)
		out = append(out, types.EvidenceItem{
			Source:     ScamDBName,
			Kind:       types.KindDatasetMatch,
			Title:      e.Label,
			URL:        ref,
			Snippet:    strings.Join(snippetParts, " | "),
			ObservedAt: observed,
			Raw:        raw,
		})
		if len(out) >= resultLimit {
			break
		}
	}
	return out, nil
}

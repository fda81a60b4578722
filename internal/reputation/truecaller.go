package reputation

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"phonescope/internal/httpx"
	"phonescope/pkg/types"
)

const (
	TruecallerName     = "truecaller"
	truecallerHost     = "api4.truecaller.com"
	truecallerEndpoint = "https://api4.truecaller.com/v1/search"
)

// TruecallerAdapter is the PII-capable owner-identity adapter. It never runs
// unless credentials are configured, the adapter is enabled, and the caller
// supplied explicit consent; the adapter re-checks those conditions itself
// even though the pipeline gates it first.
type TruecallerAdapter struct {
	client  *httpx.Client
	base    string
	enabled bool
	apiKey  string
	consent types.Consent
	now     func() time.Time
}

func NewTruecaller(client *httpx.Client, enabled bool, apiKey string, consent types.Consent) *TruecallerAdapter {
	return &TruecallerAdapter{
		client:  client,
		base:    truecallerEndpoint,
		enabled: enabled,
		apiKey:  apiKey,
		consent: consent,
		now:     time.Now,
	}
}

func (a *TruecallerAdapter) Name() string     { return TruecallerName }
func (a *TruecallerAdapter) Host() string     { return truecallerHost }
func (a *TruecallerAdapter) PIICapable() bool { return true }

type truecallerResponse struct {
	Name     string `json:"name"`
	Category string `json:"owner_category"`
}

func (a *TruecallerAdapter) Lookup(ctx context.Context, subject string) ([]types.EvidenceItem, error) {
	if !a.enabled || a.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if !a.consent.Granted || a.consent.Purpose == "" {
		return nil, ErrConsentRequired
	}

	params := url.Values{
		"q":   []string{subject},
		"key": []string{a.apiKey},
	}
	var resp truecallerResponse
	if err := a.client.GetJSON(ctx, a.base, params, &resp); err != nil {
		return nil, err
	}
	if resp.Name == "" {
		return nil, nil
	}
	if resp.Category == "" {
		resp.Category = types.OwnerUnknown
	}

	raw, _ := json.Marshal(types.OwnerPII{
		Name:     resp.Name,
		Source:   TruecallerName,
		Category: resp.Category,
	})
	return []types.EvidenceItem{{
		Source:     TruecallerName,
		Kind:       types.KindOwnerRecord,
		Title:      "Confirmed owner identity",
		URL:        "truecaller://" + subject,
		ObservedAt: a.now().UTC(),
		Raw:        raw,
		PII:        true,
	}}, nil
}

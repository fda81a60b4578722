package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"phonescope/internal/httpx"
	"phonescope/pkg/types"
)

const (
	GoogleName     = "google"
	googleHost     = "www.googleapis.com"
	googleEndpoint = "https://www.googleapis.com/customsearch/v1"
)

// GoogleAdapter queries the Custom Search API with operator-provided
// credentials. No keys ship with this repository.
type GoogleAdapter struct {
	client *httpx.Client
	base   string
	apiKey string
	cx     string
	now    func() time.Time
}

func NewGoogle(client *httpx.Client, apiKey, cx string) (*GoogleAdapter, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google custom search: %w (set adapters.google.api_key and cx)", ErrNotConfigured)
	}
	return &GoogleAdapter{client: client, base: googleEndpoint, apiKey: apiKey, cx: cx, now: time.Now}, nil
}

func (a *GoogleAdapter) Name() string     { return GoogleName }
func (a *GoogleAdapter) Host() string     { return googleHost }
func (a *GoogleAdapter) PIICapable() bool { return false }

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type googleResponse struct {
	Items []googleItem `json:"items"`
}

func (a *GoogleAdapter) Lookup(ctx context.Context, subject string) ([]types.EvidenceItem, error) {
	params := url.Values{
		"key": []string{a.apiKey},
		"cx":  []string{a.cx},
		"q":   []string{subject},
		"num": []string{strconv.Itoa(resultLimit)},
	}
	var resp googleResponse
	if err := a.client.GetJSON(ctx, a.base, params, &resp); err != nil {
		return nil, err
	}

	observed := a.now().UTC()
	var out []types.EvidenceItem
	for _, item := range resp.Items {
		if len(out) >= resultLimit {
			break
		}
		raw, _ := json.Marshal(item)
		out = append(out, types.EvidenceItem{
			Source:     GoogleName,
			Kind:       types.KindSearchResult,
			Title:      item.Title,
			URL:        item.Link,
			Snippet:    item.Snippet,
			ObservedAt: observed,
			Raw:        raw,
		})
	}
	return out, nil
}

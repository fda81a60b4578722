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
	DuckDuckGoName = "duckduckgo"
	ddgHost        = "api.duckduckgo.com"
	ddgEndpoint    = "https://api.duckduckgo.com/"
)

// DuckDuckGoAdapter queries the public Instant Answer API. It is not a full
// web search, but it is ToS-friendly context without HTML scraping.
type DuckDuckGoAdapter struct {
	client *httpx.Client
	base   string
	now    func() time.Time
}

func NewDuckDuckGo(client *httpx.Client) *DuckDuckGoAdapter {
	return &DuckDuckGoAdapter{client: client, base: ddgEndpoint, now: time.Now}
}

func (a *DuckDuckGoAdapter) Name() string     { return DuckDuckGoName }
func (a *DuckDuckGoAdapter) Host() string     { return ddgHost }
func (a *DuckDuckGoAdapter) PIICapable() bool { return false }

type ddgTopic struct {
	FirstURL string     `json:"FirstURL"`
	Text     string     `json:"Text"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

func flattenTopics(topics []ddgTopic) []ddgTopic {
	var out []ddgTopic
	for _, t := range topics {
		// Grouped results nest their entries under Topics.
		if len(t.Topics) > 0 {
			out = append(out, flattenTopics(t.Topics)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

func (a *DuckDuckGoAdapter) Lookup(ctx context.Context, subject string) ([]types.EvidenceItem, error) {
	params := url.Values{
		"q":             []string{subject},
		"format":        []string{"json"},
		"no_html":       []string{"1"},
		"skip_disambig": []string{"1"},
	}
	var resp ddgResponse
	if err := a.client.GetJSON(ctx, a.base, params, &resp); err != nil {
		return nil, err
	}

	observed := a.now().UTC()
	var out []types.EvidenceItem
	if resp.AbstractURL != "" || resp.AbstractText != "" {
		raw, _ := json.Marshal(map[string]string{
			"heading": resp.Heading, "abstract": resp.AbstractText, "url": resp.AbstractURL,
		})
		out = append(out, types.EvidenceItem{
			Source:     DuckDuckGoName,
			Kind:       types.KindSearchResult,
			Title:      resp.Heading,
			URL:        resp.AbstractURL,
			Snippet:    resp.AbstractText,
			ObservedAt: observed,
			Raw:        raw,
		})
	}
	for _, topic := range flattenTopics(resp.RelatedTopics) {
		if len(out) >= resultLimit {
			break
		}
		if topic.FirstURL == "" && topic.Text == "" {
			continue
		}
		raw, _ := json.Marshal(topic)
		out = append(out, types.EvidenceItem{
			Source:     DuckDuckGoName,
			Kind:       types.KindSearchResult,
			Title:      topic.Text,
			URL:        topic.FirstURL,
			Snippet:    topic.Text,
			ObservedAt: observed,
			Raw:        raw,
		})
	}
	return out, nil
}

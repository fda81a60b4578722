package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phonescope/internal/config"
	"phonescope/internal/httpx"
	"phonescope/pkg/types"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Config{Timeout: 2 * time.Second, MaxRetries: 0})
}

func TestDuckDuckGoParsesAbstractAndTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "+12025550100" {
			t.Errorf("unexpected query %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Heading":      "Example",
			"AbstractText": "An abstract",
			"AbstractURL":  "https://example.com/abstract",
			"RelatedTopics": []map[string]any{
				{"FirstURL": "https://example.com/a", "Text": "topic a"},
				{"Topics": []map[string]any{
					{"FirstURL": "https://example.com/b", "Text": "topic b"},
				}},
			},
		})
	}))
	defer srv.Close()

	a := NewDuckDuckGo(testClient())
	a.base = srv.URL

	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].URL != "https://example.com/abstract" || items[0].Kind != types.KindSearchResult {
		t.Fatalf("unexpected abstract item: %+v", items[0])
	}
	if items[2].URL != "https://example.com/b" {
		t.Fatalf("nested topics not flattened: %+v", items[2])
	}
}

func TestDuckDuckGoEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Heading":"","AbstractText":"","AbstractURL":"","RelatedTopics":[]}`))
	}))
	defer srv.Close()

	a := NewDuckDuckGo(testClient())
	a.base = srv.URL

	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestGoogleRequiresCredentials(t *testing.T) {
	if _, err := NewGoogle(testClient(), "", "cx"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewGoogle(testClient(), "key", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGoogleParsesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "k" || q.Get("cx") != "c" {
			t.Errorf("credentials missing from request: %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"title": "First", "link": "https://example.com/1", "snippet": "one"},
				{"title": "Second", "link": "https://example.com/2", "snippet": "two"},
			},
		})
	}))
	defer srv.Close()

	a, err := NewGoogle(testClient(), "k", "c")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.base = srv.URL

	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 2 || items[1].Title != "Second" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestTruecallerGates(t *testing.T) {
	consent := types.Consent{Granted: true, Purpose: "fraud investigation"}

	a := NewTruecaller(testClient(), false, "key", consent)
	if _, err := a.Lookup(context.Background(), "+12025550100"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("disabled adapter: expected ErrNotConfigured, got %v", err)
	}

	a = NewTruecaller(testClient(), true, "", consent)
	if _, err := a.Lookup(context.Background(), "+12025550100"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("missing key: expected ErrNotConfigured, got %v", err)
	}

	a = NewTruecaller(testClient(), true, "key", types.Consent{Granted: true})
	if _, err := a.Lookup(context.Background(), "+12025550100"); !errors.Is(err, ErrConsentRequired) {
		t.Fatalf("missing purpose: expected ErrConsentRequired, got %v", err)
	}

	a = NewTruecaller(testClient(), true, "key", types.Consent{Purpose: "x"})
	if _, err := a.Lookup(context.Background(), "+12025550100"); !errors.Is(err, ErrConsentRequired) {
		t.Fatalf("not granted: expected ErrConsentRequired, got %v", err)
	}
}

func TestTruecallerReturnsPIIItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Jordan Example","owner_category":"individual"}`))
	}))
	defer srv.Close()

	a := NewTruecaller(testClient(), true, "key", types.Consent{Granted: true, Purpose: "fraud investigation"})
	a.base = srv.URL

	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if !item.PII || item.Kind != types.KindOwnerRecord {
		t.Fatalf("owner record not flagged as PII: %+v", item)
	}
	var pii types.OwnerPII
	if err := json.Unmarshal(item.Raw, &pii); err != nil {
		t.Fatalf("raw payload: %v", err)
	}
	if pii.Name != "Jordan Example" || pii.Category != "individual" {
		t.Fatalf("unexpected pii: %+v", pii)
	}
}

func TestTruecallerNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":""}`))
	}))
	defer srv.Close()

	a := NewTruecaller(testClient(), true, "key", types.Consent{Granted: true, Purpose: "fraud investigation"})
	a.base = srv.URL

	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty result, got %v %v", items, err)
	}
}

func TestBuildAliasesAndDiagnostics(t *testing.T) {
	cfg := config.DefaultConfig()
	consent := types.Consent{}

	adapters, diags := Build([]string{"ddg", "duckduckgo", "scamdb", "bogus"}, cfg, testClient(), consent)
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}
	if adapters[0].Name() != DuckDuckGoName || adapters[1].Name() != ScamDBName {
		t.Fatalf("request order not preserved: %s, %s", adapters[0].Name(), adapters[1].Name())
	}
	if len(diags) != 1 || diags[0].Adapter != "bogus" {
		t.Fatalf("expected diagnostic for unknown adapter, got %+v", diags)
	}
}

func TestBuildDisabledAndMisconfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Adapters.DuckDuckGo.Enabled = false
	cfg.Adapters.Google.Enabled = true // no credentials

	adapters, diags := Build([]string{"duckduckgo", "google", "scam_db"}, cfg, testClient(), types.Consent{})
	if len(adapters) != 1 || adapters[0].Name() != ScamDBName {
		t.Fatalf("expected only scam_db, got %+v", adapters)
	}
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", diags)
	}
}

func TestBuildTruecallerAlwaysConstructed(t *testing.T) {
	cfg := config.DefaultConfig()
	adapters, diags := Build([]string{"truecaller"}, cfg, testClient(), types.Consent{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(adapters) != 1 || !adapters[0].PIICapable() {
		t.Fatalf("expected PII-capable truecaller adapter, got %+v", adapters)
	}
}

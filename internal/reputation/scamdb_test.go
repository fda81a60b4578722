package reputation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"phonescope/pkg/types"
)

func TestScamDBSampleMatch(t *testing.T) {
	a, err := NewScamDB("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !a.SampleDataset() {
		t.Fatalf("expected sample dataset flag")
	}

	items, err := a.Lookup(context.Background(), "+18005550199")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(items))
	}
	item := items[0]
	if item.Source != ScamDBName || item.Kind != types.KindDatasetMatch {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.URL != "scamdb://phonescope_sample_dataset/tech-support" {
		t.Fatalf("unexpected reference: %q", item.URL)
	}
}

func TestScamDBNoMatchIsEmptyNotError(t *testing.T) {
	a, err := NewScamDB("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no matches, got %d", len(items))
	}
}

func TestScamDBCustomDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scam_list.json")
	data := `[{"e164":"+12025550100","label":"Test entry","source":"unit_test"}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, err := NewScamDB(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.SampleDataset() {
		t.Fatalf("custom dataset must not be flagged as sample")
	}
	items, err := a.Lookup(context.Background(), "+12025550100")
	if err != nil || len(items) != 1 {
		t.Fatalf("lookup: err=%v items=%d", err, len(items))
	}
	if items[0].URL != "scamdb://unit_test" {
		t.Fatalf("expected pseudo-url fallback, got %q", items[0].URL)
	}
}

func TestScamDBMalformedDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scam_list.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewScamDB(path); err == nil {
		t.Fatalf("expected error for malformed dataset")
	}
}

// Package signal derives the named scoring inputs from enrichment data and
// collected evidence. Derivation is pure and re-run on every lookup; signals
// are never persisted on their own.
package signal

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"phonescope/internal/config"
	"phonescope/pkg/types"
)

const overrideSource = "signal_override"

// Engine evaluates signals in a fixed, documented order so breakdowns stay
// stable across runs.
type Engine struct {
	Domains   config.DomainListsConfig
	Overrides Overrides
	Now       func() time.Time
}

func NewEngine(domains config.DomainListsConfig, overrides Overrides) *Engine {
	return &Engine{Domains: domains, Overrides: overrides, Now: time.Now}
}

// Derive computes the signal list for one subject. The second return value
// holds synthetic evidence items for every override that fired; callers
// append them to the report's evidence list.
func (e *Engine) Derive(enrichment types.Enrichment, evidence []types.EvidenceItem) ([]types.Signal, []types.EvidenceItem) {
	subject := enrichment.E164
	var signals []types.Signal
	var synthetic []types.EvidenceItem

	force := func(name string) bool {
		if !e.Overrides.Forced(name, subject) {
			return false
		}
		synthetic = append(synthetic, e.overrideItem(name, subject))
		return true
	}

	datasetRefs := refsOfKind(evidence, types.KindDatasetMatch)
	scam := len(datasetRefs) > 0
	scamRationale := "no scam dataset match"
	if scam {
		scamRationale = "matched a scam dataset"
	}
	if force(types.SignalScamDB) {
		scam = true
		scamRationale = "forced by signal override"
	}
	signals = append(signals, boolSignal(types.SignalScamDB, scam, scamRationale, datasetRefs))

	voip := strings.EqualFold(enrichment.NumberType, "voip")
	voipRationale := fmt.Sprintf("number type is %q", enrichment.NumberType)
	if force(types.SignalVOIP) {
		voip = true
		voipRationale = "forced by signal override"
	}
	signals = append(signals, boolSignal(types.SignalVOIP, voip, voipRationale, nil))

	classifiedRefs := matchingRefs(evidence, e.Domains.Classifieds)
	classifieds := len(classifiedRefs) > 0
	classifiedsRationale := "no evidence URL matched a classifieds domain"
	if classifieds {
		classifiedsRationale = "evidence URL matched a classifieds domain"
	}
	if force(types.SignalClassifieds) {
		classifieds = true
		classifiedsRationale = "forced by signal override"
	}
	signals = append(signals, boolSignal(types.SignalClassifieds, classifieds, classifiedsRationale, classifiedRefs))

	businessRefs := matchingRefs(evidence, e.Domains.Business)
	business := len(businessRefs) > 0
	businessRationale := "no evidence URL matched a business directory domain"
	if business {
		businessRationale = "evidence URL matched a business directory domain"
	}
	if force(types.SignalBusiness) {
		business = true
		businessRationale = "forced by signal override"
	}
	signals = append(signals, boolSignal(types.SignalBusiness, business, businessRationale, businessRefs))

	// The age term only exists when there is dated evidence to age.
	if years, refs, ok := e.mentionAge(evidence); ok {
		signals = append(signals, types.Signal{
			Name:      types.SignalMentionAge,
			Value:     years,
			Numeric:   true,
			Rationale: "years since oldest evidence observation, capped at 10",
			Evidence:  refs,
		})
	}

	return signals, synthetic
}

func (e *Engine) overrideItem(name, subject string) types.EvidenceItem {
	return types.EvidenceItem{
		Source:     overrideSource,
		Kind:       types.KindSignalOverride,
		Title:      "Signal override: " + name,
		URL:        "override://" + name + "/" + subject,
		Snippet:    fmt.Sprintf("signal %q forced true for %s by the override table", name, subject),
		ObservedAt: e.Now().UTC(),
	}
}

func (e *Engine) mentionAge(evidence []types.EvidenceItem) (float64, []string, bool) {
	var oldest time.Time
	var ref string
	for _, item := range evidence {
		if item.ObservedAt.IsZero() {
			continue
		}
		if oldest.IsZero() || item.ObservedAt.Before(oldest) {
			oldest = item.ObservedAt
			ref = refOf(item)
		}
	}
	if oldest.IsZero() {
		return 0, nil, false
	}
	years := e.Now().Sub(oldest).Hours() / (24 * 365)
	if years < 0 {
		years = 0
	}
	if years > 10 {
		years = 10
	}
	// Two decimals keeps the breakdown readable and repeat runs stable.
	return math.Round(years*100) / 100, []string{ref}, true
}

func boolSignal(name string, value bool, rationale string, refs []string) types.Signal {
	v := 0.0
	if value {
		v = 1.0
	}
	return types.Signal{Name: name, Value: v, Bool: value, Rationale: rationale, Evidence: refs}
}

func refOf(item types.EvidenceItem) string {
	if item.URL != "" {
		return item.URL
	}
	return item.Source
}

func refsOfKind(evidence []types.EvidenceItem, kind string) []string {
	var refs []string
	for _, item := range evidence {
		if item.Kind == kind {
			refs = append(refs, refOf(item))
		}
	}
	return refs
}

func matchingRefs(evidence []types.EvidenceItem, markers []string) []string {
	var refs []string
	for _, item := range evidence {
		if item.URL == "" {
			continue
		}
		for _, marker := range markers {
			if MatchesMarker(item.URL, marker) {
				refs = append(refs, item.URL)
				break
			}
		}
	}
	return refs
}

// MatchesMarker matches an evidence URL against a configured marker.
// Markers are either a bare domain ("yelp.com") matched exactly or as a
// registrable-domain suffix, or a domain plus path prefix
// ("google.com/maps"). No substring or fuzzy matching.
func MatchesMarker(rawurl, marker string) bool {
	u, err := url.Parse(rawurl)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())

	marker = strings.ToLower(strings.TrimSpace(marker))
	domainPart := marker
	pathPart := ""
	if i := strings.IndexByte(marker, '/'); i >= 0 {
		domainPart = marker[:i]
		pathPart = strings.Trim(marker[i:], "/")
	}

	if !hostMatches(host, domainPart) {
		return false
	}
	if pathPart == "" {
		return true
	}
	path := strings.ToLower(strings.Trim(u.Path, "/"))
	return path == pathPart || strings.HasPrefix(path, pathPart+"/")
}

func hostMatches(host, domain string) bool {
	if host == domain || strings.HasSuffix(host, "."+domain) {
		return true
	}
	// Subdomain-of-registrable-domain comparison keeps "m.yelp.com" matching
	// a "yelp.com" marker without matching "notyelp.com".
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && etld1 == domain {
		return true
	}
	return false
}

package owner

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"phonescope/internal/config"
	"phonescope/internal/signal"
	"phonescope/pkg/types"
)

var emailRe = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)

// RedactSnippet strips email addresses from free-text snippets before they
// enter a report. Text is NFC-normalized first so composed and decomposed
// spellings of the same address redact identically.
func RedactSnippet(text string) string {
	return emailRe.ReplaceAllString(norm.NFC.String(text), "[REDACTED_EMAIL]")
}

// Label assigns the coarse association label for one evidence item.
func Label(item types.EvidenceItem, domains config.DomainListsConfig) string {
	if item.Kind == types.KindOwnerRecord {
		return LabelIdentity
	}
	if item.Kind == types.KindDatasetMatch || strings.HasPrefix(strings.ToLower(item.URL), "scamdb://") {
		return LabelScamReport
	}
	for _, marker := range domains.Business {
		if signal.MatchesMarker(item.URL, marker) {
			return LabelBusiness
		}
	}
	for _, marker := range domains.Classifieds {
		if signal.MatchesMarker(item.URL, marker) {
			return LabelClassified
		}
	}
	return LabelMention
}

// Associations converts evidence into labeled, redacted associations in
// evidence order.
func Associations(evidence []types.EvidenceItem, domains config.DomainListsConfig) []types.OwnerAssociation {
	out := make([]types.OwnerAssociation, 0, len(evidence))
	for _, item := range evidence {
		out = append(out, types.OwnerAssociation{
			Source:     item.Source,
			URL:        item.URL,
			Snippet:    RedactSnippet(item.Snippet),
			Label:      Label(item, domains),
			ObservedAt: item.ObservedAt,
		})
	}
	return out
}

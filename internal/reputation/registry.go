package reputation

import (
	"fmt"

	"phonescope/internal/config"
	"phonescope/internal/httpx"
	"phonescope/pkg/types"
)

// CanonicalName resolves the aliases accepted on the command line.
func CanonicalName(name string) string {
	switch name {
	case "ddg", "duckduckgo":
		return DuckDuckGoName
	case "google", "gcs":
		return GoogleName
	case "public", "scamdb", "scam_db":
		return ScamDBName
	case "truecaller":
		return TruecallerName
	default:
		return name
	}
}

// Build constructs the requested adapters in request order. Adapters that are
// unknown, disabled, or missing configuration become diagnostics rather than
// failures; the pipeline still runs with whatever remains. PII-capable
// adapters are constructed here but included or excluded by the privacy
// gates, not by this registry.
func Build(requested []string, cfg config.Config, client *httpx.Client, consent types.Consent) ([]Adapter, []types.Diagnostic) {
	var adapters []Adapter
	var diags []types.Diagnostic

	seen := make(map[string]bool)
	for _, raw := range requested {
		name := CanonicalName(raw)
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case ScamDBName:
			if !cfg.Adapters.ScamDB.Enabled {
				diags = append(diags, types.Diagnostic{Adapter: name, Reason: "disabled in configuration"})
				continue
			}
			a, err := NewScamDB(cfg.Adapters.ScamDB.DatasetPath)
			if err != nil {
				diags = append(diags, types.Diagnostic{Adapter: name, Reason: err.Error()})
				continue
			}
			adapters = append(adapters, a)
		case DuckDuckGoName:
			if !cfg.Adapters.DuckDuckGo.Enabled {
				diags = append(diags, types.Diagnostic{Adapter: name, Reason: "disabled in configuration"})
				continue
			}
			adapters = append(adapters, NewDuckDuckGo(client))
		case GoogleName:
			if !cfg.Adapters.Google.Enabled {
				diags = append(diags, types.Diagnostic{Adapter: name, Reason: "disabled in configuration"})
				continue
			}
			a, err := NewGoogle(client, cfg.Adapters.Google.APIKey, cfg.Adapters.Google.CX)
			if err != nil {
				diags = append(diags, types.Diagnostic{Adapter: name, Reason: err.Error()})
				continue
			}
			adapters = append(adapters, a)
		case TruecallerName:
			adapters = append(adapters, NewTruecaller(client, cfg.Adapters.Truecaller.Enabled, cfg.Adapters.Truecaller.APIKey, consent))
		default:
			diags = append(diags, types.Diagnostic{Adapter: name, Reason: fmt.Sprintf("unknown adapter %q", raw)})
		}
	}
	return adapters, diags
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"phonescope/internal/config"
	"phonescope/internal/pipeline"
	"phonescope/internal/report"
	"phonescope/pkg/types"
)

const version = "0.1.0"

func main() {
	exitFn(run(os.Args, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "lookup":
		return handleLookup(args[2:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "phonescope %s\n", version)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func handleLookup(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", envOrDefault("PHONESCOPE_CONFIG", ""), "config file path")
	adaptersFlag := fs.String("adapters", "", "comma-separated adapter list (overrides config default)")
	jsonOut := fs.Bool("json", false, "print the full report as JSON")
	noCache := fs.Bool("no-cache", false, "bypass the evidence cache")
	consent := fs.Bool("consent", false, "affirm lawful-basis consent for PII-capable lookups")
	purpose := fs.String("purpose", "", "stated purpose for PII-capable lookups")
	caller := fs.String("caller", "", "caller identity recorded in the audit trail")
	enrichmentPath := fs.String("enrichment", "", "read the enrichment record from a JSON file")
	reportPath := fs.String("report", "", "also write the JSON report to this path")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	enrichment, err := resolveEnrichment(fs.Args(), *enrichmentPath)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		fs.Usage()
		return 2
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, "config:", err)
			return 1
		}
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	defer func() { _ = p.Close() }()

	opts := pipeline.Options{
		Consent: types.Consent{Granted: *consent, Purpose: *purpose, Caller: *caller},
		NoCache: *noCache,
	}
	if *adaptersFlag != "" {
		for _, name := range strings.Split(*adaptersFlag, ",") {
			if name = strings.TrimSpace(name); name != "" {
				opts.Adapters = append(opts.Adapters, name)
			}
		}
	}

	rep, err := p.Lookup(context.Background(), enrichment, opts)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	encoded, err := report.EncodeJSON(rep)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if *reportPath != "" {
		if dir := filepath.Dir(*reportPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				fmt.Fprintln(stderr, "report dir:", err)
				return 1
			}
		}
		if err := os.WriteFile(*reportPath, encoded, 0o600); err != nil {
			fmt.Fprintln(stderr, "write report:", err)
			return 1
		}
	}

	if *jsonOut {
		_, _ = stdout.Write(encoded)
		return 0
	}
	printSummary(stdout, rep)
	return 0
}

func resolveEnrichment(args []string, path string) (types.Enrichment, error) {
	if path != "" {
		if len(args) != 0 {
			return types.Enrichment{}, fmt.Errorf("pass either a subject argument or -enrichment, not both")
		}
		// #nosec G304 -- path is operator-provided.
		raw, err := os.ReadFile(path)
		if err != nil {
			return types.Enrichment{}, fmt.Errorf("enrichment: %w", err)
		}
		var e types.Enrichment
		if err := json.Unmarshal(raw, &e); err != nil {
			return types.Enrichment{}, fmt.Errorf("enrichment: %w", err)
		}
		return e, nil
	}
	if len(args) != 1 {
		return types.Enrichment{}, fmt.Errorf("lookup requires <e164_subject> or -enrichment FILE")
	}
	return types.Enrichment{E164: args[0], NumberType: "unknown"}, nil
}

func printSummary(w io.Writer, r types.Report) {
	fmt.Fprintf(w, "report_id=%s subject=%s example_mode=%t\n", r.ReportID, r.Subject, r.ExampleMode)
	fmt.Fprintf(w, "score=%d/%d owner=%s confidence=%.2f\n",
		int(r.Score.Total), int(r.Score.Ceiling), r.Owner.Type, r.Owner.Confidence)
	for _, s := range r.Signals {
		fmt.Fprintf(w, "signal %s value=%g rationale=%q\n", s.Name, s.Value, s.Rationale)
	}
	fmt.Fprintf(w, "evidence_items=%d diagnostics=%d audit_entries=%d\n",
		len(r.Evidence), len(r.Diagnostics), len(r.AuditTrail))
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "diagnostic adapter=%s reason=%q\n", d.Adapter, d.Reason)
	}
	fmt.Fprintln(w, r.Summary)
}

func envOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func usage(w io.Writer) {
	fmt.Fprint(w, `phonescope

Usage:
  phonescope lookup <e164_subject> [flags]
  phonescope lookup -enrichment enrichment.json [flags]
  phonescope version

Lookup flags:
  -config PATH      config file (default $PHONESCOPE_CONFIG)
  -adapters LIST    comma-separated adapters, e.g. scam_db,ddg
  -json             print the full report as JSON
  -report PATH      also write the JSON report to PATH
  -no-cache         bypass the evidence cache
  -consent          affirm consent for PII-capable lookups
  -purpose TEXT     stated purpose for PII-capable lookups
  -caller NAME      caller identity for the audit trail
`)
}

// Package pipeline wires the full lookup: adapter selection, privacy gating,
// concurrent evidence collection, signal derivation, scoring, ownership
// classification, and report assembly. A lookup fails only on an invalid
// subject or unusable configuration; adapter trouble degrades to diagnostics.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"phonescope/internal/cache"
	"phonescope/internal/config"
	"phonescope/internal/httpx"
	"phonescope/internal/orchestrator"
	"phonescope/internal/owner"
	"phonescope/internal/ratelimit"
	"phonescope/internal/report"
	"phonescope/internal/reputation"
	"phonescope/internal/score"
	"phonescope/internal/signal"
	"phonescope/pkg/types"
)

// Options are the per-lookup knobs from the caller.
type Options struct {
	// Adapters overrides the configured default adapter set.
	Adapters []string
	Consent  types.Consent
	// NoCache bypasses the evidence cache for this lookup.
	NoCache bool
}

type Pipeline struct {
	cfg       config.Config
	client    *httpx.Client
	limiter   *ratelimit.Limiter
	store     cache.Store
	cacheDiag *types.Diagnostic
	overrides signal.Overrides
	builder   *report.Builder
	now       func() time.Time
}

// New builds a pipeline from validated configuration, loading the signal
// override table eagerly so misconfiguration surfaces before the first
// lookup. An unreachable cache store is not fatal: lookups run uncached and
// each report carries a diagnostic for it.
func New(cfg config.Config) (*Pipeline, error) {
	client := httpx.New(httpx.Config{
		Timeout:     secs(cfg.HTTP.TimeoutSeconds),
		MaxRetries:  cfg.HTTP.MaxRetries,
		BackoffBase: secs(cfg.HTTP.BackoffBaseSeconds),
		BackoffMax:  secs(cfg.HTTP.BackoffMaxSeconds),
		UserAgent:   cfg.HTTP.UserAgent,
	})

	var store cache.Store
	var cacheDiag *types.Diagnostic
	if cfg.Cache.Enabled {
		var err error
		switch cfg.Cache.Driver {
		case "sqlite":
			store, err = cache.OpenSQLite(cfg.Cache.Path)
		case "postgres":
			store, err = cache.OpenPostgres(cfg.Cache.DSN)
		default:
			err = fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
		}
		if err != nil {
			store = nil
			cacheDiag = &types.Diagnostic{Adapter: "cache", Reason: err.Error()}
		}
	}

	overrides, err := signal.LoadOverrides(cfg.OverridesPath())
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		client:    client,
		limiter:   ratelimit.New(cfg.HTTP.RatePerHost),
		store:     store,
		cacheDiag: cacheDiag,
		overrides: overrides,
		builder:   report.NewBuilder(),
		now:       time.Now,
	}, nil
}

func (p *Pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// Lookup runs the full pipeline for one subject. A report is produced for
// every valid subject, no matter how many adapters failed.
func (p *Pipeline) Lookup(ctx context.Context, enrichment types.Enrichment, opts Options) (types.Report, error) {
	if err := enrichment.Validate(); err != nil {
		return types.Report{}, err
	}
	subject := enrichment.E164

	requested := opts.Adapters
	if len(requested) == 0 {
		requested = p.cfg.Adapters.Default
	}
	adapters, diags := reputation.Build(requested, p.cfg, p.client, opts.Consent)
	if p.cacheDiag != nil {
		diags = append(diags, *p.cacheDiag)
	}

	// The PII gate is evaluated and audited on every run, requested or not.
	var audit []types.AuditEntry
	piiAllowed, gateEntry := owner.EvaluateGate(
		reputation.TruecallerName,
		p.cfg.Adapters.Truecaller.Enabled,
		p.cfg.Adapters.Truecaller.APIKey != "",
		opts.Consent,
		p.now(),
	)
	audit = append(audit, gateEntry)

	runnable := adapters[:0:0]
	exampleMode := false
	for _, a := range adapters {
		if a.PIICapable() && !piiAllowed {
			continue
		}
		if s, ok := a.(*reputation.ScamDBAdapter); ok && s.SampleDataset() {
			exampleMode = true
		}
		runnable = append(runnable, a)
	}

	store := p.store
	if opts.NoCache {
		store = nil
	}
	orch := orchestrator.New(store, p.limiter, orchestrator.Config{
		CallTimeout: secs(p.cfg.HTTP.TimeoutSeconds),
		Deadline:    secs(p.cfg.Deadline),
		TTL:         time.Duration(p.cfg.Cache.TTLSeconds) * time.Second,
	})
	collected := orch.Collect(ctx, runnable, subject)

	evidence := collected.Evidence
	diags = append(diags, collected.Diagnostics...)

	engine := signal.NewEngine(p.cfg.Domains, p.overrides)
	signals, synthetic := engine.Derive(enrichment, evidence)
	evidence = append(evidence, synthetic...)

	audit = append(audit, owner.PIIAuditEntries(evidence, opts.Consent, p.now())...)

	scored := score.Compute(signals, p.cfg.Score.Weights, p.cfg.Score.Floor, p.cfg.Score.Ceiling)

	voip := false
	for _, s := range signals {
		if s.Name == types.SignalVOIP {
			voip = s.Bool
			break
		}
	}
	intel := owner.Build(evidence, voip, piiAllowed, p.cfg.Domains, p.cfg.Owner.Weights)

	return p.builder.Build(report.Input{
		Enrichment:  enrichment,
		Evidence:    evidence,
		Diagnostics: diags,
		Signals:     signals,
		Score:       scored,
		Owner:       intel,
		AuditTrail:  audit,
		ExampleMode: exampleMode,
	}), nil
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

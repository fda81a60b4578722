// Package reputation holds the evidence adapters. Each adapter queries one
// source and returns zero or more evidence items; "nothing found" is an empty
// list, never an error.
package reputation

import (
	"context"
	"errors"

	"phonescope/pkg/types"
)

// Adapter is the capability contract the orchestrator depends on. Host names
// the destination for rate limiting; adapters that do not touch the network
// return an empty host. PII-capable adapters are subject to privacy gating
// before they are ever invoked.
type Adapter interface {
	Name() string
	Host() string
	PIICapable() bool
	Lookup(ctx context.Context, subject string) ([]types.EvidenceItem, error)
}

// ErrNotConfigured marks an adapter that cannot run because required
// credentials or flags are missing.
var ErrNotConfigured = errors.New("adapter is not configured")

// ErrConsentRequired marks a PII lookup attempted without explicit consent.
var ErrConsentRequired = errors.New("explicit consent is required for PII lookups")

const resultLimit = 5

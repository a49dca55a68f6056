// Package client implements the superlight client (component C5): the
// initial MMR audit, the pairwise tournament, the three-stage bisection
// game, and final committee adoption, orchestrated over the C1-C4
// components and the external Prover contract.
package client

import (
	"time"

	"github.com/eth2030/superlight/log"
	"github.com/eth2030/superlight/prover"
	"github.com/eth2030/superlight/syncstore"
)

// Config is the client's configuration (spec.md §6.3): the shared
// fan-out n, the prover set to query, and the verifier-side sync
// store. RequestTimeout and Logger are ambient additions outside the
// core protocol's required surface.
type Config struct {
	// N is the Merkle/MMR fan-out. It must equal the n every configured
	// prover used to build its own trees; a mismatch is a configuration
	// error, not a protocol failure (spec.md §9).
	N uint8

	// Provers is the full set of provers to audit and, where they
	// disagree, play the bisection game over.
	Provers []prover.Prover

	// Store is the verifier's own trusted genesis committee, period
	// clock, and fraud-proof predicate.
	Store syncstore.Store

	// RequestTimeout bounds every individual prover call. Spec.md §5
	// does not mandate timeouts, but treating one as a prover failure
	// remains sound as long as an honest prover survives elsewhere in
	// the pool. Zero disables the timeout (the call can still be
	// cancelled via the Sync context).
	RequestTimeout time.Duration

	// Logger receives observational events only; per spec.md §7 it
	// never drives control flow. A nil Logger falls back to
	// log.Default().
	Logger *log.Logger
}

// DefaultConfig returns a Config with the spec's default fan-out (n=2)
// and a conservative per-call timeout. Provers and Store must still be
// supplied by the caller.
func DefaultConfig() Config {
	return Config{
		N:              2,
		RequestTimeout: 10 * time.Second,
		Logger:         log.Default(),
	}
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

package client

import (
	"errors"
	"fmt"
)

// ErrAllProversDishonest is returned by Sync when every validly-shaped
// prover was eliminated, or every tournament winner failed the final
// latest-committee audit — spec.md §7's "all provers dishonest" error
// kind. The caller decides whether to retry with a different prover
// set; the client never retries on its own.
var ErrAllProversDishonest = errors.New("client: all provers dishonest")

// FatalProtocolError signals spec.md §7's "protocol invariant
// violation" error kind: a condition the protocol treats as impossible
// under its own preconditions (mismatched peak-list lengths, two
// differing nodes with identical children, both sides of a disputed
// leaf verifying as honest). Sync aborts immediately and returns no
// partial results.
type FatalProtocolError struct {
	Reason string
}

func (e *FatalProtocolError) Error() string {
	return fmt.Sprintf("client: protocol invariant violated: %s", e.Reason)
}

// fatalf logs reason via the client's logger before wrapping it as a
// FatalProtocolError, so every protocol-invariant abort leaves a trace
// even though Sync itself never retries or recovers from one.
func (c *Client) fatalf(format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	c.log.FatalAbort(reason)
	return &FatalProtocolError{Reason: reason}
}

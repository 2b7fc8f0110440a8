// Package vision defines the Vision Capability contract (spec §6.1): an
// opaque async capability that returns either a textual payload or a
// parse-ready object. The core never implements a concrete provider
// transport — that is explicitly out of scope (rate limiting and circuit
// breaking are the capability's own responsibility).
package vision

import (
	"context"
	"time"
)

// Deadline is the fixed timeout the core applies to every capability call
// (spec §5): on expiry the call is treated as provider-unavailable.
const Deadline = 45 * time.Second

// Request is what the core sends to the capability.
type Request struct {
	Image  []byte
	Prompt string
	Schema any
}

// Response is the capability's result. Exactly one of Content or Parsed
// should be set; Normalize accepts either.
type Response struct {
	Content string
	Parsed  any
}

// Capability is the narrow interface the core depends on. A nil, nil
// return means "provider unavailable" — never an error — and the caller
// feeds that straight into the Response Normalizer, which synthesizes the
// offline fallback.
type Capability interface {
	Analyze(ctx context.Context, req Request) (*Response, error)
}

// CallWithDeadline wraps a Capability call with the fixed 45s deadline. A
// context deadline exceeded here is treated as provider-unavailable per
// spec §5/§7 (DeadlineError is folded into VisionUnavailableError), not
// surfaced as an error to the caller.
func CallWithDeadline(ctx context.Context, cap Capability, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, Deadline)
	defer cancel()

	resp, err := cap.Analyze(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			// Deadline or caller cancellation: distinguish but both collapse
			// to "no result" for the Normalizer, per spec §7.
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

package translate

import "context"

// Provider is the common interface for all translation backends. A call
// takes the full chunk prompt plus the original chunk text to fall back
// on; the provider owns its internal retry, rate-limit, and model-fallback
// chains, and the caller always receives exactly one string. When the
// provider cannot produce a result it returns the fallback string together
// with the error that caused it; the error is for logging and retry
// accounting, never a hard failure of the run. Missing credentials are a
// constructor error, not a per-call one.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the backend name for logging.
	Name() string
	// Translate turns a prompt into translated subtitle text.
	Translate(ctx context.Context, prompt, fallback string) (string, error)
}

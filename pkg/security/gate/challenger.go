package gate

import "context"

// Challenger is a platform-provided biometric verification mechanism
// (fingerprint/face); offered as an alternate unlock path when available
type Challenger interface {
	Available(ctx context.Context) bool
	Challenge(ctx context.Context) (bool, error)
}

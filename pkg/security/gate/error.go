package gate

import "github.com/pkg/errors"

var (
	ErrNilGate               = errors.New("security gate is nil")
	ErrNilVault              = errors.New("vault is nil")
	ErrNoPinSet              = errors.New("no pin credential is set")
	ErrWrongCurrentPin       = errors.New("current pin does not match")
	ErrChallengerUnavailable = errors.New("biometric challenger is unavailable")
)

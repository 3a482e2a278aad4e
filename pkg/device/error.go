package device

import "github.com/pkg/errors"

var (
	ErrNilManager      = errors.New("device manager is nil")
	ErrNilVault        = errors.New("vault is nil")
	ErrEmptyIdentifier = errors.New("device identifier is empty")
)

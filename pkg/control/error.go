package control

import "github.com/pkg/errors"

var (
	ErrNilPort           = errors.New("control port is nil")
	ErrUnknownCapability = errors.New("unknown control capability")
	ErrEmptyAddress      = errors.New("controller address is empty")
	ErrControllerFailure = errors.New("controller rejected the command")
)

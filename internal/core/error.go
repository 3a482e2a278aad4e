package core

import "github.com/pkg/errors"

// errors
var (
	ErrNilCore          = errors.New("vehictrl core is nil")
	ErrNilVault         = errors.New("vault is nil")
	ErrNilDeviceManager = errors.New("device manager is nil")
	ErrNilAuthSession   = errors.New("auth session is nil")
	ErrNilSecurityGate  = errors.New("security gate is nil")
	ErrNilNetMonitor    = errors.New("network monitor is nil")
)

package auth

import "github.com/pkg/errors"

var (
	ErrNilSession       = errors.New("auth session is nil")
	ErrNilDeviceManager = errors.New("device manager is nil")
	ErrEmptyServerURL   = errors.New("registration server url is empty")
)

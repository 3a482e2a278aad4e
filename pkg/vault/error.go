package vault

import "github.com/pkg/errors"

var (
	ErrNilStore      = errors.New("vault store is nil")
	ErrNilVault      = errors.New("vault is nil")
	ErrEmptyKey      = errors.New("vault key is empty")
	ErrEntryNotFound = errors.New("vault entry not found")
	ErrNilDatabase   = errors.New("database is nil")
	ErrEmptyVIN      = errors.New("vin is empty")
	ErrShortVIN      = errors.New("vin must be at least 5 characters")
	ErrEmptyOwner    = errors.New("owner name is empty")
	ErrInvalidEmail  = errors.New("email is invalid")
	ErrInvalidMobile = errors.New("mobile number is invalid")
)

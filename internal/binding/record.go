package binding

import (
	"time"

	"github.com/oklog/ulid"
	"github.com/pkg/errors"
)

// errors
var (
	ErrNilManager     = errors.New("binding manager is nil")
	ErrNilStore       = errors.New("binding store is nil")
	ErrNilDatabase    = errors.New("database is nil")
	ErrNilCache       = errors.New("binding cache is nil")
	ErrEmptyVIN       = errors.New("vin is empty")
	ErrEmptyDeviceID  = errors.New("device id is empty")
	ErrInvalidVIN     = errors.New("vin does not match the authorized vehicle")
	ErrVINConflict    = errors.New("vin is already bound to another device")
	ErrNotRegistered  = errors.New("no registration found")
	ErrNotAuthorized  = errors.New("device is not authorized for this vehicle")
	ErrRecordNotFound = errors.New("binding record not found")
)

// Record maps the vehicle's vin to the single device authorized to
// control it; at most one record exists until an explicit reset
type Record struct {
	ID           ulid.ULID `json:"id"`
	VIN          string    `json:"vin"`
	DeviceID     string    `json:"device_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Validate checks record integrity
func (r Record) Validate() error {
	if r.VIN == "" {
		return ErrEmptyVIN
	}

	if r.DeviceID == "" {
		return ErrEmptyDeviceID
	}

	return nil
}

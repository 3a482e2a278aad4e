package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	jsoniter "github.com/json-iterator/go"
	"github.com/technodrive/vehictrl/pkg/security/pin"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// persistent entry keys
const (
	KeyUserData = "userData"
	KeyUserPin  = "userPin"
	KeyAppState = "appState"
	KeyDeviceID = "technodrive_device_id"
)

const mobilePattern = `^[\d\s\+\-\(\)]+$`

// UserData is the owner/vehicle profile captured during registration
type UserData struct {
	VIN          string `json:"vin_number"`
	OwnerName    string `json:"owner_name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
}

// Validate sanity-checks profile fields before they're persisted
func (d UserData) Validate() error {
	if strings.TrimSpace(d.VIN) == "" {
		return ErrEmptyVIN
	}

	if len(d.VIN) < 5 {
		return ErrShortVIN
	}

	if strings.TrimSpace(d.OwnerName) == "" {
		return ErrEmptyOwner
	}

	if !govalidator.IsEmail(d.Email) {
		return ErrInvalidEmail
	}

	if !govalidator.Matches(d.MobileNumber, mobilePattern) {
		return ErrInvalidMobile
	}

	return nil
}

// AppState is the tri-flag lifecycle record; IsUnlocked is forced back
// to false on every fresh process launch while a pin exists
type AppState struct {
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
	HasSetPin              bool `json:"hasSetPin"`
	IsUnlocked             bool `json:"isUnlocked"`
}

// Vault is a typed facade over a Store, holding the owner profile,
// pin credential, app lifecycle flags and the device identifier fallback
type Vault struct {
	store  Store
	logger *zap.Logger
}

// New initializes a vault over a given store
func New(s Store) (*Vault, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	return &Vault{store: s}, nil
}

// SetLogger assigns a logger to this vault
func (v *Vault) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[vault]")
	}

	v.logger = logger

	return nil
}

// Logger returns own logger
func (v *Vault) Logger() *zap.Logger {
	if v.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize vault logger: %s", err))
		}

		v.logger = l
	}

	return v.logger
}

// Store returns the underlying store
func (v *Vault) Store() (Store, error) {
	if v.store == nil {
		return nil, ErrNilStore
	}

	return v.store, nil
}

// PutUserData validates and persists the owner profile
func (v *Vault) PutUserData(ctx context.Context, d UserData) error {
	if err := d.Validate(); err != nil {
		return err
	}

	buf, err := json.Marshal(d)
	if err != nil {
		return err
	}

	return v.store.Put(ctx, KeyUserData, buf)
}

// UserData returns the stored owner profile or ErrEntryNotFound
func (v *Vault) UserData(ctx context.Context) (d UserData, err error) {
	buf, err := v.store.Get(ctx, KeyUserData)
	if err != nil {
		return d, err
	}

	if err = json.Unmarshal(buf, &d); err != nil {
		return d, err
	}

	return d, nil
}

// PutPin persists a pin credential
func (v *Vault) PutPin(ctx context.Context, c pin.Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}

	buf, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return v.store.Put(ctx, KeyUserPin, buf)
}

// Pin returns the stored pin credential or ErrEntryNotFound
func (v *Vault) Pin(ctx context.Context) (c pin.Credential, err error) {
	buf, err := v.store.Get(ctx, KeyUserPin)
	if err != nil {
		return c, err
	}

	if err = json.Unmarshal(buf, &c); err != nil {
		return c, err
	}

	return c, nil
}

// PutAppState persists the lifecycle flags
func (v *Vault) PutAppState(ctx context.Context, s AppState) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return v.store.Put(ctx, KeyAppState, buf)
}

// AppState returns the stored lifecycle flags; an absent entry yields
// the fresh-install zero value
func (v *Vault) AppState(ctx context.Context) (s AppState, err error) {
	buf, err := v.store.Get(ctx, KeyAppState)
	if err != nil {
		if err == ErrEntryNotFound {
			return s, nil
		}

		return s, err
	}

	if err = json.Unmarshal(buf, &s); err != nil {
		return s, err
	}

	return s, nil
}

// PutDeviceID persists the fallback device identifier
func (v *Vault) PutDeviceID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyKey
	}

	return v.store.Put(ctx, KeyDeviceID, []byte(id))
}

// DeviceID returns the fallback device identifier or ErrEntryNotFound
func (v *Vault) DeviceID(ctx context.Context) (string, error) {
	buf, err := v.store.Get(ctx, KeyDeviceID)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// Bootstrap applies launch-time state adjustments; freshLaunch is supplied
// by the host shell because the vault itself cannot distinguish a new
// process from in-app navigation
func (v *Vault) Bootstrap(ctx context.Context, freshLaunch bool) error {
	if !freshLaunch {
		return nil
	}

	s, err := v.AppState(ctx)
	if err != nil {
		return err
	}

	// forcing re-authentication on a new process launch
	if s.HasSetPin && s.IsUnlocked {
		s.IsUnlocked = false

		if err = v.PutAppState(ctx, s); err != nil {
			return err
		}

		v.Logger().Info("relocked on fresh launch")
	}

	return nil
}

// SignOut clears the profile, pin and lifecycle flags, returning the
// installation to the fresh-install condition
func (v *Vault) SignOut(ctx context.Context) error {
	for _, key := range []string{KeyUserData, KeyUserPin, KeyAppState} {
		if err := v.store.Delete(ctx, key); err != nil && err != ErrEntryNotFound {
			return err
		}
	}

	v.Logger().Info("signed out, vault cleared")

	return nil
}

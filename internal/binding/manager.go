package binding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/technodrive/vehictrl/pkg/util"
	"go.uber.org/zap"
)

// Manager enforces the one-vin-one-device exclusivity invariant on the
// server side; the store remains the source of truth, the cache only
// accelerates repeated verify lookups
type Manager struct {
	store         Store
	cache         Cache
	authorizedVIN string
	logger        *zap.Logger
}

// NewManager initializes a binding manager; cache may be nil
func NewManager(s Store, cache Cache, authorizedVIN string) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	if strings.TrimSpace(authorizedVIN) == "" {
		return nil, ErrEmptyVIN
	}

	return &Manager{
		store:         s,
		cache:         cache,
		authorizedVIN: authorizedVIN,
	}, nil
}

// SetLogger assigns a logger to this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[binding]")
	}

	m.logger = logger

	return nil
}

// Logger returns own logger
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize binding manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// Register binds a device to the vehicle; re-registration by the same
// device is idempotent, a different device is rejected until reset
func (m *Manager) Register(ctx context.Context, vin, deviceID string) (Record, error) {
	if strings.TrimSpace(vin) == "" {
		return Record{}, ErrEmptyVIN
	}

	if strings.TrimSpace(deviceID) == "" {
		return Record{}, ErrEmptyDeviceID
	}

	if vin != m.authorizedVIN {
		m.Logger().Warn("registration attempt with wrong vin", zap.String("device_id", deviceID))

		return Record{}, ErrInvalidVIN
	}

	existing, err := m.store.Get(ctx)
	if err == nil {
		if existing.DeviceID != deviceID {
			m.Logger().Warn("registration conflict",
				zap.String("bound_device", existing.DeviceID),
				zap.String("device_id", deviceID),
			)

			return Record{}, ErrVINConflict
		}

		return existing, nil
	}

	if err != ErrRecordNotFound {
		return Record{}, err
	}

	r := Record{
		ID:           util.NewULID(),
		VIN:          vin,
		DeviceID:     deviceID,
		RegisteredAt: time.Now(),
	}

	if err = m.store.Put(ctx, r); err != nil {
		return Record{}, err
	}

	m.invalidate(ctx, deviceID)
	m.Logger().Info("device registered", zap.String("device_id", deviceID))

	return r, nil
}

// Verify answers whether a given device holds the binding
func (m *Manager) Verify(ctx context.Context, deviceID string) (Record, error) {
	if strings.TrimSpace(deviceID) == "" {
		return Record{}, ErrEmptyDeviceID
	}

	// cache hit short-circuits the store lookup
	if m.cache != nil {
		if buf, err := m.cache.Get(ctx, deviceID); err == nil {
			var r Record
			if err = json.Unmarshal(buf, &r); err == nil && r.DeviceID == deviceID {
				return r, nil
			}
		}
	}

	r, err := m.store.Get(ctx)
	if err != nil {
		if err == ErrRecordNotFound {
			return Record{}, ErrNotRegistered
		}

		return Record{}, err
	}

	if r.DeviceID != deviceID {
		return Record{}, ErrNotAuthorized
	}

	if m.cache != nil {
		if buf, err := json.Marshal(r); err == nil {
			_ = m.cache.Put(ctx, deviceID, buf)
		}
	}

	return r, nil
}

// Status returns the current binding, if any
func (m *Manager) Status(ctx context.Context) (Record, bool, error) {
	r, err := m.store.Get(ctx)
	if err != nil {
		if err == ErrRecordNotFound {
			return Record{}, false, nil
		}

		return Record{}, false, err
	}

	return r, true, nil
}

// Reset clears the binding, allowing a new device to register
func (m *Manager) Reset(ctx context.Context) error {
	r, err := m.store.Get(ctx)
	if err != nil && err != ErrRecordNotFound {
		return err
	}

	if err == nil {
		m.invalidate(ctx, r.DeviceID)
	}

	if err = m.store.Delete(ctx); err != nil {
		return err
	}

	m.Logger().Info("binding reset")

	return nil
}

func (m *Manager) invalidate(ctx context.Context, deviceID string) {
	if m.cache == nil {
		return
	}

	if err := m.cache.Delete(ctx, deviceID); err != nil {
		m.Logger().Warn("failed to invalidate cache entry", zap.Error(err))
	}
}

package device

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/technodrive/vehictrl/pkg/vault"
	"go.uber.org/zap"
)

// ID is an opaque, stable identifier naming this installation
type ID string

// Source is a platform-native identifier provider (i.e. a mobile OS
// device id); absence or failure is absorbed by the local fallback
type Source interface {
	Identifier(ctx context.Context) (string, error)
}

// Manager produces and persists the installation's device identifier.
// Resolution order: native source, vault fallback, freshly generated
// UUID persisted before returning. Once resolved, the same identifier
// is returned for the lifetime of the installation.
type Manager struct {
	source Source
	vault  *vault.Vault
	cached ID
	logger *zap.Logger
	sync.Mutex
}

// NewManager initializes a device identity manager; source may be nil
// when no platform-native provider exists
func NewManager(v *vault.Vault, source Source) (*Manager, error) {
	if v == nil {
		return nil, ErrNilVault
	}

	return &Manager{
		source: source,
		vault:  v,
	}, nil
}

// SetLogger assigns a logger to this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[device]")
	}

	m.logger = logger

	return nil
}

// Logger returns own logger
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize device manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// Identifier returns the stable device identifier, resolving it on
// first call; idempotent
func (m *Manager) Identifier(ctx context.Context) (ID, error) {
	m.Lock()
	defer m.Unlock()

	if m.cached != "" {
		return m.cached, nil
	}

	// native retrieval failure is absorbed, only logged
	if m.source != nil {
		id, err := m.source.Identifier(ctx)
		if err != nil {
			m.Logger().Warn("native device id unavailable, using fallback", zap.Error(err))
		} else if strings.TrimSpace(id) != "" {
			// keeping a vault backup of the native identifier
			if err = m.vault.PutDeviceID(ctx, id); err != nil {
				m.Logger().Warn("failed to back up native device id", zap.Error(err))
			}

			m.cached = ID(id)

			return m.cached, nil
		}
	}

	// fallback: previously generated identifier
	id, err := m.vault.DeviceID(ctx)
	if err == nil {
		m.cached = ID(id)

		return m.cached, nil
	}

	if err != vault.ErrEntryNotFound {
		return "", err
	}

	// generating and persisting a new identifier; a storage failure
	// here is the only error surfaced to the caller
	id = uuid.New().String()
	if err = m.vault.PutDeviceID(ctx, id); err != nil {
		return "", err
	}

	m.Logger().Info("generated new device id", zap.String("device_id", id))
	m.cached = ID(id)

	return m.cached, nil
}

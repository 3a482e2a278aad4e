package core

import (
	"context"
	"fmt"

	"github.com/technodrive/vehictrl/pkg/auth"
	"github.com/technodrive/vehictrl/pkg/control"
	"github.com/technodrive/vehictrl/pkg/device"
	"github.com/technodrive/vehictrl/pkg/netmon"
	"github.com/technodrive/vehictrl/pkg/security/gate"
	"github.com/technodrive/vehictrl/pkg/vault"
	"go.uber.org/zap"
)

// Core aggregates the client's security and connectivity machinery; the
// presentational shell consumes its state and never talks to the
// registration server directly
type Core struct {
	vault   *vault.Vault
	devices *device.Manager
	session *auth.Session
	gate    *gate.Gate
	monitor *netmon.Monitor
	port    control.Port
	logger  *zap.Logger
}

// New initializes the core; port may be nil when running headless
func New(v *vault.Vault, devices *device.Manager, session *auth.Session, g *gate.Gate, monitor *netmon.Monitor, port control.Port) (*Core, error) {
	if v == nil {
		return nil, ErrNilVault
	}

	if devices == nil {
		return nil, ErrNilDeviceManager
	}

	if session == nil {
		return nil, ErrNilAuthSession
	}

	if g == nil {
		return nil, ErrNilSecurityGate
	}

	if monitor == nil {
		return nil, ErrNilNetMonitor
	}

	return &Core{
		vault:   v,
		devices: devices,
		session: session,
		gate:    g,
		monitor: monitor,
		port:    port,
	}, nil
}

// SetLogger setting a primary logger for the core
func (c *Core) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[vehictrl]")
	}

	c.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and
// returning a new default emergency logger
// NOTE: will panic if it finally fails to obtain a logger
func (c *Core) Logger() *zap.Logger {
	if c.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize core logger: %s", err))
		}

		c.logger = l
	}

	return c.logger
}

// Vault returns the local vault
func (c *Core) Vault() *vault.Vault { return c.vault }

// Devices returns the device identity manager
func (c *Core) Devices() *device.Manager { return c.devices }

// Session returns the auth session
func (c *Core) Session() *auth.Session { return c.session }

// Gate returns the security gate
func (c *Core) Gate() *gate.Gate { return c.gate }

// Monitor returns the network monitor
func (c *Core) Monitor() *netmon.Monitor { return c.monitor }

// Port returns the vehicle control port, may be nil
func (c *Core) Port() control.Port { return c.port }

// Init sequences the launch: relock if needed, start the reachability
// probe, resolve the device identifier and run the automatic first
// verification. freshLaunch is supplied by the host shell.
func (c *Core) Init(ctx context.Context, freshLaunch bool) error {
	l := c.Logger()
	l.Info("initializing the core", zap.Bool("fresh_launch", freshLaunch))

	if err := c.vault.Bootstrap(ctx, freshLaunch); err != nil {
		return err
	}

	c.monitor.Start(ctx)

	id, err := c.devices.Identifier(ctx)
	if err != nil {
		return err
	}

	l.Info("device identity resolved", zap.String("device_id", string(id)))

	c.session.EnsureVerified(ctx)
	l.Info("initial verification done", zap.String("auth_state", c.session.State().String()))

	return nil
}

// SignOut clears local state; a subsequent launch behaves like a
// fresh install
func (c *Core) SignOut(ctx context.Context) error {
	return c.vault.SignOut(ctx)
}

// Shutdown stops background activity
func (c *Core) Shutdown() {
	c.monitor.Stop()
	c.Logger().Info("core stopped")
}

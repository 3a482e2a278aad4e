package control

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Capability names a controllable vehicle function; each capability
// maps to a configured controller address, hiding the physical split
// across multiple microcontrollers
type Capability string

const (
	CapIgnition Capability = "ignition"
	CapStarter  Capability = "starter"
	CapAC       Capability = "ac"
)

// DefaultTimeout bounds a single control command
const DefaultTimeout = 5 * time.Second

// Port sends named on/off commands to the vehicle's controllers
type Port interface {
	Set(ctx context.Context, c Capability, on bool) error
}

type httpPort struct {
	addrs  map[Capability]string
	client *http.Client
	logger *zap.Logger
}

// NewPort initializes an HTTP control port over a capability->address map
func NewPort(addrs map[Capability]string, timeout time.Duration, logger *zap.Logger) (Port, error) {
	if len(addrs) == 0 {
		return nil, ErrEmptyAddress
	}

	for c, addr := range addrs {
		if strings.TrimSpace(addr) == "" {
			return nil, errors.Wrapf(ErrEmptyAddress, "capability: %s", c)
		}
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if logger != nil {
		logger = logger.Named("[control]")
	}

	return &httpPort{
		addrs:  addrs,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// Set issues a fire-and-forget control command; the response body is
// discarded, only the status code is checked
func (p *httpPort) Set(ctx context.Context, c Capability, on bool) error {
	base, ok := p.addrs[c]
	if !ok {
		return errors.Wrapf(ErrUnknownCapability, "capability: %s", c)
	}

	state := 0
	if on {
		state = 1
	}

	u := fmt.Sprintf("%s/control?%s=%d", strings.TrimRight(base, "/"), c, state)

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "control command failed: %s=%d", c, state)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(ErrControllerFailure, "status: %d", resp.StatusCode)
	}

	if p.logger != nil {
		p.logger.Info("control command sent", zap.String("capability", string(c)), zap.Int("state", state))
	}

	return nil
}

package netmon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNilMonitor     = errors.New("network monitor is nil")
	ErrEmptyServerURL = errors.New("registration server url is empty")
)

const (
	// DefaultInterval is the background probe cadence
	DefaultInterval = 3 * time.Second

	// DefaultTimeout bounds a single probe
	DefaultTimeout = 5 * time.Second
)

// Status is the monitor's view of registration server reachability.
// HasInitialCheck lets consumers tell "not yet known" apart from
// "confirmed unreachable" so a cold start never flashes offline.
type Status struct {
	Connected       bool      `json:"connected"`
	Checking        bool      `json:"checking"`
	HasInitialCheck bool      `json:"has_initial_check"`
	LastChecked     time.Time `json:"last_checked"`
}

// Monitor periodically probes the registration server's liveness
// endpoint; probes are independent and last-writer-wins on status
type Monitor struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	status   Status
	stop     chan struct{}
	running  bool
	logger   *zap.Logger
	sync.RWMutex
}

// NewMonitor initializes a reachability monitor for a given server base url
func NewMonitor(baseURL string, interval, timeout time.Duration) (*Monitor, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyServerURL
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Monitor{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		interval: interval,
	}, nil
}

// SetLogger assigns a logger to this monitor
func (m *Monitor) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[netmon]")
	}

	m.logger = logger

	return nil
}

// Logger returns own logger
func (m *Monitor) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize network monitor logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// Status returns the current reachability status
func (m *Monitor) Status() Status {
	m.RLock()
	defer m.RUnlock()

	return m.status
}

// CheckNow issues a single bounded-time liveness probe; reachable iff
// the server answers 2xx within the timeout
func (m *Monitor) CheckNow(ctx context.Context) bool {
	m.Lock()
	m.status.Checking = true
	m.Unlock()

	reachable := m.probe(ctx)

	m.Lock()
	m.status.Checking = false
	m.status.Connected = reachable
	m.status.HasInitialCheck = true
	if reachable {
		m.status.LastChecked = time.Now()
	}
	m.Unlock()

	return reachable
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequest(http.MethodGet, m.baseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req.WithContext(ctx))
	if err != nil {
		m.Logger().Debug("liveness probe failed", zap.Error(err))

		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Start launches the background repeating probe; safe to call once
// per monitor lifecycle
func (m *Monitor) Start(ctx context.Context) {
	m.Lock()
	if m.running {
		m.Unlock()
		return
	}

	m.running = true
	m.stop = make(chan struct{})
	stop := m.stop
	m.Unlock()

	go func() {
		// immediate first check so consumers aren't left in the
		// "not yet known" state for a whole interval
		m.CheckNow(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop halts the background probe
func (m *Monitor) Stop() {
	m.Lock()
	defer m.Unlock()

	if !m.running {
		return
	}

	m.running = false
	close(m.stop)
}

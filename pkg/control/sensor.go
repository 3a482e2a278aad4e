package control

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultSensorInterval is the blind-spot poll cadence
const DefaultSensorInterval = 500 * time.Millisecond

// Reading is a single blind-spot sample; Distance is a binary
// proximity flag reported by the ultrasonic sensor
type Reading struct {
	Distance int `json:"distance"`
}

// Sensor polls a blind-spot sensor's data endpoint on a fixed interval
// with an explicit start/stop lifecycle
type Sensor struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	last     Reading
	fresh    bool
	stop     chan struct{}
	running  bool
	logger   *zap.Logger
	sync.RWMutex
}

// NewSensor initializes a blind-spot sensor poller
func NewSensor(baseURL string, interval, timeout time.Duration, logger *zap.Logger) (*Sensor, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyAddress
	}

	if interval <= 0 {
		interval = DefaultSensorInterval
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if logger != nil {
		logger = logger.Named("[sensor]")
	}

	return &Sensor{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		interval: interval,
		logger:   logger,
	}, nil
}

// Poll fetches a single reading
func (s *Sensor) Poll(ctx context.Context) (r Reading, err error) {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/data", nil)
	if err != nil {
		return r, err
	}

	resp, err := s.client.Do(req.WithContext(ctx))
	if err != nil {
		return r, errors.Wrap(err, "sensor poll failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return r, errors.Wrapf(ErrControllerFailure, "status: %d", resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return r, errors.Wrap(err, "failed to decode sensor reading")
	}

	s.Lock()
	s.last = r
	s.fresh = true
	s.Unlock()

	return r, nil
}

// Reading returns the last successful sample and whether one exists yet
func (s *Sensor) Reading() (Reading, bool) {
	s.RLock()
	defer s.RUnlock()

	return s.last, s.fresh
}

// Start launches the repeating poll loop
func (s *Sensor) Start(ctx context.Context) {
	s.Lock()
	if s.running {
		s.Unlock()
		return
	}

	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.Poll(ctx); err != nil && s.logger != nil {
					s.logger.Debug("sensor poll error", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the poll loop
func (s *Sensor) Stop() {
	s.Lock()
	defer s.Unlock()

	if !s.running {
		return
	}

	s.running = false
	close(s.stop)
}

// StreamURL builds the MJPEG stream url for a given camera address
func StreamURL(base string) string {
	return strings.TrimRight(base, "/") + "/stream"
}

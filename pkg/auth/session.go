package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/technodrive/vehictrl/pkg/device"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout bounds every outbound call; timeouts are treated
// exactly like any other network failure
const DefaultTimeout = 5 * time.Second

// State is the session's authorization state; the server remains the
// sole source of truth for binding state
type State uint8

const (
	SChecking State = iota
	SVerified
	SUnauthorized
	SUnregistered
	SNetworkError
)

func (s State) String() string {
	switch s {
	case SChecking:
		return "checking"
	case SVerified:
		return "verified"
	case SUnauthorized:
		return "unauthorized"
	case SUnregistered:
		return "unregistered"
	case SNetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("unrecognized auth state: %d", uint8(s))
	}
}

// Result is the outcome of a registration attempt
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type registerPayload struct {
	VIN      string `json:"vin"`
	DeviceID string `json:"device_id"`
}

type registerResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	VIN      string `json:"vin,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

// user-facing failure messages
const (
	msgDeviceIDUnavailable = "Device ID not available"
	msgJoinVehicleNetwork  = "Cannot connect to vehicle server. Make sure you are connected to the vehicle's WiFi network."
	msgServerUnreachable   = "Cannot connect to vehicle server"
	msgNotAuthorized       = "This device is not authorized for this vehicle"
	msgInvalidVIN          = "Invalid VIN/Chassis number"
	msgVINConflict         = "This VIN is already registered to another device"
	msgRegistered          = "Registration successful"
	msgRegistrationFailed  = "Registration failed"
)

// Session owns device registration and verification against the
// registration server. Register/verify calls are not fenced against
// each other; whichever response lands last wins the state.
type Session struct {
	devices *device.Manager
	baseURL string
	client  *http.Client
	state   State
	lastErr string
	checked bool
	logger  *zap.Logger
	sync.RWMutex
}

// NewSession initializes an auth session against a given server base url
func NewSession(devices *device.Manager, baseURL string, timeout time.Duration) (*Session, error) {
	if devices == nil {
		return nil, ErrNilDeviceManager
	}

	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyServerURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Session{
		devices: devices,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		state:   SChecking,
	}, nil
}

// SetLogger assigns a logger to this session
func (s *Session) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[auth]")
	}

	s.logger = logger

	return nil
}

// Logger returns own logger
func (s *Session) Logger() *zap.Logger {
	if s.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize auth session logger: %s", err))
		}

		s.logger = l
	}

	return s.logger
}

// State returns the current authorization state
func (s *Session) State() State {
	s.RLock()
	defer s.RUnlock()

	return s.state
}

// Err returns the last user-facing error message, if any
func (s *Session) Err() string {
	s.RLock()
	defer s.RUnlock()

	return s.lastErr
}

func (s *Session) setState(state State, msg string) {
	s.Lock()
	s.state = state
	s.lastErr = msg
	s.Unlock()
}

// RegisterDevice binds this installation to a given vin; state only
// advances to verified on an unambiguous server success
func (s *Session) RegisterDevice(ctx context.Context, vin string) Result {
	id, err := s.devices.Identifier(ctx)
	if err != nil || id == "" {
		return Result{Success: false, Message: msgDeviceIDUnavailable}
	}

	buf, err := json.Marshal(registerPayload{VIN: vin, DeviceID: string(id)})
	if err != nil {
		return Result{Success: false, Message: msgRegistrationFailed}
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/register", bytes.NewReader(buf))
	if err != nil {
		return Result{Success: false, Message: msgRegistrationFailed}
	}

	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.Logger().Warn("registration request failed", zap.Error(err))
		s.setState(SNetworkError, msgJoinVehicleNetwork)

		return Result{Success: false, Message: msgJoinVehicleNetwork}
	}
	defer resp.Body.Close()

	// decode failures fall through to the default messages
	var data registerResponse
	_ = json.NewDecoder(resp.Body).Decode(&data)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		s.setState(SVerified, "")
		s.Logger().Info("device registered", zap.String("vin", vin))

		return Result{Success: true, Message: firstNonEmpty(data.Message, msgRegistered)}
	case resp.StatusCode == http.StatusUnauthorized:
		return Result{Success: false, Message: firstNonEmpty(data.Message, msgInvalidVIN)}
	case resp.StatusCode == http.StatusConflict:
		return Result{Success: false, Message: firstNonEmpty(data.Message, msgVINConflict)}
	default:
		return Result{Success: false, Message: firstNonEmpty(data.Error, msgRegistrationFailed)}
	}
}

// VerifyDevice asks the server whether this installation still holds
// the binding; any ambiguous response denies access
func (s *Session) VerifyDevice(ctx context.Context) bool {
	id, err := s.devices.Identifier(ctx)
	if err != nil || id == "" {
		s.setState(SUnregistered, "")

		return false
	}

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/verify?device_id="+url.QueryEscape(string(id)), nil)
	if err != nil {
		s.setState(SUnauthorized, "")

		return false
	}

	req = req.WithContext(ctx)

	resp, err := s.client.Do(req)
	if err != nil {
		s.Logger().Warn("verification request failed", zap.Error(err))
		s.setState(SNetworkError, msgServerUnreachable)

		return false
	}
	defer resp.Body.Close()

	var data verifyResponse
	_ = json.NewDecoder(resp.Body).Decode(&data)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300 && data.Verified:
		s.setState(SVerified, "")

		return true
	case resp.StatusCode == http.StatusNotFound:
		s.setState(SUnregistered, "")

		return false
	case resp.StatusCode == http.StatusForbidden:
		s.setState(SUnauthorized, firstNonEmpty(data.Message, msgNotAuthorized))

		return false
	default:
		s.setState(SUnauthorized, "")

		return false
	}
}

// EnsureVerified runs the automatic first verification, exactly once,
// while the session is still in its initial checking state; any
// re-verification after that is caller-initiated
func (s *Session) EnsureVerified(ctx context.Context) bool {
	s.Lock()
	run := !s.checked && s.state == SChecking
	s.checked = true
	s.Unlock()

	if run {
		return s.VerifyDevice(ctx)
	}

	return s.State() == SVerified
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

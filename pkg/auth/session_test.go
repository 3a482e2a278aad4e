package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/technodrive/vehictrl/pkg/auth"
	"github.com/technodrive/vehictrl/pkg/device"
	"github.com/technodrive/vehictrl/pkg/vault"
)

func newTestDevices(t *testing.T) *device.Manager {
	v, err := vault.New(vault.NewMemoryStore())
	assert.NoError(t, err)

	m, err := device.NewManager(v, nil)
	assert.NoError(t, err)

	return m
}

func newTestSession(t *testing.T, url string, timeout time.Duration) *auth.Session {
	s, err := auth.NewSession(newTestDevices(t), url, timeout)
	assert.NoError(t, err)
	assert.Equal(t, auth.SChecking, s.State())

	return s
}

func TestRegisterDeviceSuccess(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Equal(http.MethodPost, r.Method)
		a.Equal("/register", r.URL.Path)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"registered","message":"Device registered successfully"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	res := s.RegisterDevice(ctx, "EE90-9073699")
	a.True(res.Success)
	a.Equal("Device registered successfully", res.Message)
	a.Equal(auth.SVerified, s.State())
}

func TestRegisterDeviceInvalidVIN(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid VIN/Chassis number"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	res := s.RegisterDevice(ctx, "WRONG-VIN")
	a.False(res.Success)
	a.Equal("Invalid VIN/Chassis number", res.Message)

	// state stays untouched on an authorization failure
	a.Equal(auth.SChecking, s.State())
}

func TestRegisterDeviceConflict(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"This VIN is already registered to another device"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	res := s.RegisterDevice(ctx, "EE90-9073699")
	a.False(res.Success)
	a.Contains(res.Message, "already registered")
	a.NotEqual(auth.SVerified, s.State())
}

func TestRegisterDeviceServerError(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	res := s.RegisterDevice(ctx, "EE90-9073699")
	a.False(res.Success)
	a.Equal("boom", res.Message)
}

func TestRegisterDeviceNetworkError(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	s := newTestSession(t, srv.URL, 0)

	res := s.RegisterDevice(ctx, "EE90-9073699")
	a.False(res.Success)
	a.Contains(res.Message, "vehicle's WiFi network")
	a.Equal(auth.SNetworkError, s.State())
}

func TestVerifyDeviceVerified(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Equal("/verify", r.URL.Path)
		a.NotEmpty(r.URL.Query().Get("device_id"))

		w.Write([]byte(`{"verified":true,"vin":"EE90-9073699"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.True(s.VerifyDevice(ctx))
	a.Equal(auth.SVerified, s.State())
}

func TestVerifyDeviceUnregistered(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"verified":false,"reason":"not_registered"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.False(s.VerifyDevice(ctx))
	a.Equal(auth.SUnregistered, s.State())
}

func TestVerifyDeviceUnauthorized(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"verified":false,"message":"This device is not authorized for this vehicle"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.False(s.VerifyDevice(ctx))
	a.Equal(auth.SUnauthorized, s.State())
	a.Contains(s.Err(), "not authorized")
}

func TestVerifyDeviceAmbiguousResponseDeniesAccess(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.False(s.VerifyDevice(ctx))
	a.Equal(auth.SUnauthorized, s.State())
}

func TestVerifyDeviceSuccessWithoutVerifiedBodyDeniesAccess(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"verified":false}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.False(s.VerifyDevice(ctx))
	a.Equal(auth.SUnauthorized, s.State())
}

func TestVerifyDeviceNetworkError(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.False(s.VerifyDevice(ctx))
	a.Equal(auth.SNetworkError, s.State())
}

func TestTimeoutIsTreatedAsNetworkError(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"verified":true}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 50*time.Millisecond)

	a.False(s.VerifyDevice(ctx))
	a.Equal(auth.SNetworkError, s.State())
}

func TestEnsureVerifiedRunsExactlyOnce(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, 0)

	a.False(s.EnsureVerified(ctx))
	a.Equal(auth.SUnregistered, s.State())

	// subsequent calls must not hit the server again
	a.False(s.EnsureVerified(ctx))
	a.False(s.EnsureVerified(ctx))
	a.Equal(1, calls)
}

func TestAuthStateString(t *testing.T) {
	a := assert.New(t)

	a.Equal("checking", auth.SChecking.String())
	a.Equal("verified", auth.SVerified.String())
	a.Equal("unauthorized", auth.SUnauthorized.String())
	a.Equal("unregistered", auth.SUnregistered.String())
	a.Equal("network_error", auth.SNetworkError.String())
}

package netmon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/technodrive/vehictrl/pkg/netmon"
)

func TestCheckNowReachable(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Equal("/", r.URL.Path)
		w.Write([]byte(`{"message":"VehiCtrl registration server is running"}`))
	}))
	defer srv.Close()

	m, err := netmon.NewMonitor(srv.URL, 0, 0)
	a.NoError(err)

	// nothing is known before the first probe
	st := m.Status()
	a.False(st.HasInitialCheck)
	a.False(st.Connected)

	a.True(m.CheckNow(ctx))

	st = m.Status()
	a.True(st.Connected)
	a.True(st.HasInitialCheck)
	a.False(st.Checking)
	a.False(st.LastChecked.IsZero())
}

func TestCheckNowUnreachable(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	m, err := netmon.NewMonitor(srv.URL, 0, 0)
	a.NoError(err)

	a.False(m.CheckNow(ctx))

	st := m.Status()
	a.False(st.Connected)
	a.True(st.HasInitialCheck)
	a.True(st.LastChecked.IsZero())
}

func TestCheckNowNonSuccessStatus(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m, err := netmon.NewMonitor(srv.URL, 0, 0)
	a.NoError(err)

	a.False(m.CheckNow(ctx))
	a.False(m.Status().Connected)
}

func TestBackgroundProbe(t *testing.T) {
	a := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var probes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes++
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m, err := netmon.NewMonitor(srv.URL, 20*time.Millisecond, 0)
	a.NoError(err)

	m.Start(ctx)
	defer m.Stop()

	// waiting for the immediate check plus at least one tick
	time.Sleep(120 * time.Millisecond)

	st := m.Status()
	a.True(st.Connected)
	a.True(st.HasInitialCheck)
	a.True(probes >= 2)
}

func TestStopHaltsProbe(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m, err := netmon.NewMonitor(srv.URL, 10*time.Millisecond, 0)
	a.NoError(err)

	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	// double stop is harmless
	m.Stop()
}

func TestNewMonitorValidation(t *testing.T) {
	a := assert.New(t)

	_, err := netmon.NewMonitor("", 0, 0)
	a.Equal(netmon.ErrEmptyServerURL, err)
}

package control_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/technodrive/vehictrl/pkg/control"
)

func TestSetBuildsCapabilityCommand(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	p, err := control.NewPort(map[control.Capability]string{
		control.CapIgnition: srv.URL,
		control.CapStarter:  srv.URL,
	}, 0, nil)
	a.NoError(err)

	a.NoError(p.Set(ctx, control.CapIgnition, true))
	a.Equal("/control", gotPath)
	a.Equal("ignition=1", gotQuery)

	a.NoError(p.Set(ctx, control.CapStarter, false))
	a.Equal("starter=0", gotQuery)
}

func TestSetUnknownCapability(t *testing.T) {
	a := assert.New(t)

	p, err := control.NewPort(map[control.Capability]string{
		control.CapIgnition: "http://127.0.0.1:1",
	}, 0, nil)
	a.NoError(err)

	err = p.Set(context.Background(), control.CapAC, true)
	a.Error(err)
	a.Equal(control.ErrUnknownCapability, errors.Cause(err))
}

func TestSetControllerFailure(t *testing.T) {
	a := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := control.NewPort(map[control.Capability]string{control.CapAC: srv.URL}, 0, nil)
	a.NoError(err)

	a.Error(p.Set(context.Background(), control.CapAC, true))
}

func TestNewPortValidation(t *testing.T) {
	a := assert.New(t)

	_, err := control.NewPort(nil, 0, nil)
	a.Equal(control.ErrEmptyAddress, err)

	_, err = control.NewPort(map[control.Capability]string{control.CapAC: " "}, 0, nil)
	a.Error(err)
}

func TestSensorPoll(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Equal("/data", r.URL.Path)
		w.Write([]byte(`{"distance":1}`))
	}))
	defer srv.Close()

	s, err := control.NewSensor(srv.URL, 0, 0, nil)
	a.NoError(err)

	_, fresh := s.Reading()
	a.False(fresh)

	r, err := s.Poll(ctx)
	a.NoError(err)
	a.Equal(1, r.Distance)

	last, fresh := s.Reading()
	a.True(fresh)
	a.Equal(1, last.Distance)
}

func TestSensorPollFailureKeepsLastReading(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Write([]byte(`{"distance":0}`))
	}))
	defer srv.Close()

	s, err := control.NewSensor(srv.URL, 0, 0, nil)
	a.NoError(err)

	_, err = s.Poll(ctx)
	a.NoError(err)

	healthy = false
	_, err = s.Poll(ctx)
	a.Error(err)

	last, fresh := s.Reading()
	a.True(fresh)
	a.Equal(0, last.Distance)
}

func TestStreamURL(t *testing.T) {
	a := assert.New(t)

	a.Equal("http://192.168.8.230/stream", control.StreamURL("http://192.168.8.230"))
	a.Equal("http://192.168.8.230/stream", control.StreamURL("http://192.168.8.230/"))
}

package binding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/technodrive/vehictrl/internal/binding"
)

const authorizedVIN = "EE90-9073699"

func newTestManager(t *testing.T) *binding.Manager {
	cache, err := binding.NewDefaultCache(time.Minute)
	assert.NoError(t, err)

	m, err := binding.NewManager(binding.NewMemoryStore(), cache, authorizedVIN)
	assert.NoError(t, err)

	return m
}

func TestRegisterUnboundDevice(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	r, err := m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)
	a.Equal(authorizedVIN, r.VIN)
	a.Equal("device-a", r.DeviceID)
	a.False(r.RegisteredAt.IsZero())
}

func TestRegisterWrongVIN(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Register(ctx, "SOMETHING-ELSE", "device-a")
	a.Equal(binding.ErrInvalidVIN, err)
}

func TestRegisterConflict(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)

	// a second device must be rejected until reset
	_, err = m.Register(ctx, authorizedVIN, "device-b")
	a.Equal(binding.ErrVINConflict, err)

	// the binding is untouched
	r, err := m.Verify(ctx, "device-a")
	a.NoError(err)
	a.Equal("device-a", r.DeviceID)
}

func TestRegisterIsIdempotentForSameDevice(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	r1, err := m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)

	r2, err := m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)
	a.Equal(r1.ID, r2.ID)
}

func TestVerifyUnregistered(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Verify(ctx, "device-a")
	a.Equal(binding.ErrNotRegistered, err)
}

func TestVerifyWrongDevice(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)

	_, err = m.Verify(ctx, "device-b")
	a.Equal(binding.ErrNotAuthorized, err)
}

func TestVerifyUsesCache(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)

	// first lookup populates the cache, second is served from it
	r1, err := m.Verify(ctx, "device-a")
	a.NoError(err)

	r2, err := m.Verify(ctx, "device-a")
	a.NoError(err)
	a.Equal(r1.ID, r2.ID)
}

func TestVerifyWorksWithoutCache(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	m, err := binding.NewManager(binding.NewMemoryStore(), nil, authorizedVIN)
	a.NoError(err)

	_, err = m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)

	r, err := m.Verify(ctx, "device-a")
	a.NoError(err)
	a.Equal("device-a", r.DeviceID)
}

func TestStatusAndReset(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	_, bound, err := m.Status(ctx)
	a.NoError(err)
	a.False(bound)

	_, err = m.Register(ctx, authorizedVIN, "device-a")
	a.NoError(err)

	r, bound, err := m.Status(ctx)
	a.NoError(err)
	a.True(bound)
	a.Equal("device-a", r.DeviceID)

	a.NoError(m.Reset(ctx))

	_, bound, err = m.Status(ctx)
	a.NoError(err)
	a.False(bound)

	// after reset a different device may register
	_, err = m.Register(ctx, authorizedVIN, "device-b")
	a.NoError(err)

	// and the old device no longer verifies
	_, err = m.Verify(ctx, "device-a")
	a.Equal(binding.ErrNotAuthorized, err)
}

func TestNewManagerValidation(t *testing.T) {
	a := assert.New(t)

	_, err := binding.NewManager(nil, nil, authorizedVIN)
	a.Equal(binding.ErrNilStore, err)

	_, err = binding.NewManager(binding.NewMemoryStore(), nil, " ")
	a.Equal(binding.ErrEmptyVIN, err)
}

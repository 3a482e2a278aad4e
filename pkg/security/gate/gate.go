package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/technodrive/vehictrl/pkg/security/pin"
	"github.com/technodrive/vehictrl/pkg/vault"
	"go.uber.org/zap"
)

const (
	// MaxAttempts bounds consecutive pin failures before lockout
	MaxAttempts = 3

	// LockoutDuration suspends pin entry and biometric retries after
	// MaxAttempts consecutive failures
	LockoutDuration = 30 * time.Second
)

// lockout messages
const (
	msgLockedOut = "Too many failed attempts. Please wait 30 seconds."
)

// Outcome describes the result of a single unlock attempt
type Outcome struct {
	Unlocked         bool          `json:"unlocked"`
	Message          string        `json:"message,omitempty"`
	AttemptsLeft     int           `json:"attempts_left"`
	LockoutRemaining time.Duration `json:"lockout_remaining"`
}

// Gate composes the vault's pin credential with an optional biometric
// challenge to decide whether the user may proceed past the lock screen.
// The failed-attempt counter is transient and never persisted.
type Gate struct {
	vault      *vault.Vault
	challenger Challenger
	attempts   int
	lockedAt   time.Time
	unlocked   bool
	now        func() time.Time
	logger     *zap.Logger
	sync.Mutex
}

// New initializes a security gate; challenger may be nil when the
// platform offers no biometric mechanism
func New(v *vault.Vault, challenger Challenger) (*Gate, error) {
	if v == nil {
		return nil, ErrNilVault
	}

	return &Gate{
		vault:      v,
		challenger: challenger,
		now:        time.Now,
	}, nil
}

// SetClock overrides the gate's time source, used by tests to advance
// the lockout countdown without sleeping
func (g *Gate) SetClock(now func() time.Time) {
	g.Lock()
	g.now = now
	g.Unlock()
}

// SetLogger assigns a logger to this gate
func (g *Gate) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[gate]")
	}

	g.logger = logger

	return nil
}

// Logger returns own logger
func (g *Gate) Logger() *zap.Logger {
	if g.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize security gate logger: %s", err))
		}

		g.logger = l
	}

	return g.logger
}

// expireLockout resets the attempt counter once the countdown has
// elapsed; must be called under lock
func (g *Gate) expireLockout() {
	if !g.lockedAt.IsZero() && g.now().Sub(g.lockedAt) >= LockoutDuration {
		g.lockedAt = time.Time{}
		g.attempts = 0
	}
}

// remaining returns the lockout time left; must be called under lock
func (g *Gate) remaining() time.Duration {
	if g.lockedAt.IsZero() {
		return 0
	}

	left := LockoutDuration - g.now().Sub(g.lockedAt)
	if left < 0 {
		return 0
	}

	return left
}

// Unlocked reports whether the gate has been passed this session
func (g *Gate) Unlocked() bool {
	g.Lock()
	defer g.Unlock()

	return g.unlocked
}

// Attempts returns the current failed-attempt count
func (g *Gate) Attempts() int {
	g.Lock()
	defer g.Unlock()

	g.expireLockout()

	return g.attempts
}

// LockoutRemaining returns how long pin entry stays disabled
func (g *Gate) LockoutRemaining() time.Duration {
	g.Lock()
	defer g.Unlock()

	g.expireLockout()

	return g.remaining()
}

// SubmitPin compares a candidate against the stored credential; three
// consecutive mismatches enter a 30-second lockout during which further
// submissions are no-ops
func (g *Gate) SubmitPin(ctx context.Context, rawpin []byte) (Outcome, error) {
	g.Lock()
	defer g.Unlock()

	g.expireLockout()

	// a submit during lockout changes nothing
	if !g.lockedAt.IsZero() {
		return Outcome{
			Message:          msgLockedOut,
			LockoutRemaining: g.remaining(),
		}, nil
	}

	cred, err := g.vault.Pin(ctx)
	if err != nil {
		if err == vault.ErrEntryNotFound {
			return Outcome{}, ErrNoPinSet
		}

		return Outcome{}, err
	}

	if cred.Compare(rawpin) {
		g.attempts = 0
		g.unlocked = true

		if err = g.persistUnlocked(ctx); err != nil {
			return Outcome{}, err
		}

		g.Logger().Info("gate unlocked with pin")

		return Outcome{Unlocked: true, AttemptsLeft: MaxAttempts}, nil
	}

	g.attempts++

	if g.attempts >= MaxAttempts {
		g.lockedAt = g.now()
		g.Logger().Warn("gate locked out", zap.Int("attempts", g.attempts))

		return Outcome{
			Message:          msgLockedOut,
			LockoutRemaining: g.remaining(),
		}, nil
	}

	left := MaxAttempts - g.attempts

	return Outcome{
		Message:      fmt.Sprintf("Incorrect PIN. %d attempts remaining.", left),
		AttemptsLeft: left,
	}, nil
}

// TryBiometric attempts the platform challenge; success unlocks without
// consulting the pin, failure or cancellation carries no penalty toward
// the pin attempt counter
func (g *Gate) TryBiometric(ctx context.Context) (bool, error) {
	g.Lock()
	defer g.Unlock()

	g.expireLockout()

	// biometric retries are disabled during lockout as well
	if !g.lockedAt.IsZero() {
		return false, nil
	}

	if g.challenger == nil || !g.challenger.Available(ctx) {
		return false, ErrChallengerUnavailable
	}

	ok, err := g.challenger.Challenge(ctx)
	if err != nil {
		g.Logger().Debug("biometric challenge failed", zap.Error(err))

		return false, nil
	}

	if !ok {
		return false, nil
	}

	g.attempts = 0
	g.unlocked = true

	if err = g.persistUnlocked(ctx); err != nil {
		return false, err
	}

	g.Logger().Info("gate unlocked with biometric")

	return true, nil
}

// SetupPin creates the initial pin credential during onboarding and
// marks the session unlocked so the owner isn't asked to re-enter the
// pin they just set
func (g *Gate) SetupPin(ctx context.Context, rawpin []byte) error {
	cred, err := pin.New(rawpin)
	if err != nil {
		return err
	}

	if err = g.vault.PutPin(ctx, cred); err != nil {
		return err
	}

	if err = g.vault.PutAppState(ctx, vault.AppState{
		HasCompletedOnboarding: true,
		HasSetPin:              true,
		IsUnlocked:             true,
	}); err != nil {
		return err
	}

	g.Lock()
	g.unlocked = true
	g.attempts = 0
	g.Unlock()

	return nil
}

// ChangePin replaces the stored credential; fails closed when the
// current pin does not match, leaving the original credential in place.
// Current-pin mismatches do not count toward the main lockout.
func (g *Gate) ChangePin(ctx context.Context, current, newpin []byte) error {
	cred, err := g.vault.Pin(ctx)
	if err != nil {
		if err == vault.ErrEntryNotFound {
			return ErrNoPinSet
		}

		return err
	}

	if !cred.Compare(current) {
		return ErrWrongCurrentPin
	}

	next, err := pin.New(newpin)
	if err != nil {
		return err
	}

	if err = g.vault.PutPin(ctx, next); err != nil {
		return err
	}

	g.Logger().Info("pin changed")

	return nil
}

func (g *Gate) persistUnlocked(ctx context.Context) error {
	s, err := g.vault.AppState(ctx)
	if err != nil {
		return err
	}

	s.IsUnlocked = true

	return g.vault.PutAppState(ctx, s)
}

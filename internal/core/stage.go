package core

import (
	"context"
	"fmt"

	"github.com/technodrive/vehictrl/pkg/auth"
)

// Stage tells the shell which surface to present; derivation is
// default-deny, ambiguity never lands on StageReady
type Stage uint8

const (
	StageOnboarding Stage = iota
	StagePinSetup
	StageLocked
	StageReady
	StageBlocked
	StageOffline
)

func (s Stage) String() string {
	switch s {
	case StageOnboarding:
		return "onboarding"
	case StagePinSetup:
		return "pin_setup"
	case StageLocked:
		return "locked"
	case StageReady:
		return "ready"
	case StageBlocked:
		return "blocked"
	case StageOffline:
		return "offline"
	default:
		return fmt.Sprintf("unrecognized stage: %d", uint8(s))
	}
}

// Stage derives the current shell stage from auth state, lifecycle
// flags and the gate
func (c *Core) Stage(ctx context.Context) (Stage, error) {
	switch c.session.State() {
	case auth.SUnauthorized:
		// blocked until a server-side reset, out of the client's control
		return StageBlocked, nil
	case auth.SNetworkError:
		return StageOffline, nil
	case auth.SUnregistered:
		return StageOnboarding, nil
	}

	s, err := c.vault.AppState(ctx)
	if err != nil {
		return StageOnboarding, err
	}

	if !s.HasCompletedOnboarding {
		return StageOnboarding, nil
	}

	if !s.HasSetPin {
		return StagePinSetup, nil
	}

	if !s.IsUnlocked && !c.gate.Unlocked() {
		return StageLocked, nil
	}

	return StageReady, nil
}

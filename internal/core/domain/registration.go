package domain

import "fmt"

// RegistrationPhase is the progress of a single registration attempt.
type RegistrationPhase int

const (
	PhaseCheckingDuplicate RegistrationPhase = iota
	PhaseCreatingIdentity
	PhaseWritingProfile
	PhaseDone
	PhaseRolledBack
	PhaseFailed
)

func (p RegistrationPhase) String() string {
	switch p {
	case PhaseCheckingDuplicate:
		return "checking_duplicate"
	case PhaseCreatingIdentity:
		return "creating_identity"
	case PhaseWritingProfile:
		return "writing_profile"
	case PhaseDone:
		return "done"
	case PhaseRolledBack:
		return "rolled_back"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transition is allowed.
func (p RegistrationPhase) Terminal() bool {
	return p == PhaseDone || p == PhaseRolledBack || p == PhaseFailed
}

// RegistrationAttempt tracks one registration workflow. It is never persisted.
type RegistrationAttempt struct {
	Email   string
	Profile User
	Phase   RegistrationPhase
}

// NewRegistrationAttempt starts an attempt in the duplicate-check phase.
func NewRegistrationAttempt(email string, profile User) *RegistrationAttempt {
	return &RegistrationAttempt{Email: email, Profile: profile, Phase: PhaseCheckingDuplicate}
}

// Advance moves the attempt to next. Phases only move forward and a terminal
// phase is final. Done and rolled back are only reachable from the profile write.
func (a *RegistrationAttempt) Advance(next RegistrationPhase) error {
	if a.Phase.Terminal() {
		return fmt.Errorf("registration already %s", a.Phase)
	}
	if (next == PhaseDone || next == PhaseRolledBack) && a.Phase != PhaseWritingProfile {
		return fmt.Errorf("cannot move registration from %s to %s", a.Phase, next)
	}
	if next <= a.Phase {
		return fmt.Errorf("cannot move registration from %s to %s", a.Phase, next)
	}
	a.Phase = next
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// sagaStep is one unit of a multi-step workflow. undo is nil for steps with
// no side effect to compensate.
type sagaStep struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// sagaError reports which step failed and whether compensation succeeded.
type sagaError struct {
	step        string
	err         error
	rolledBack  bool
	rollbackErr error
}

func (e *sagaError) Error() string {
	if e.rollbackErr != nil {
		return fmt.Sprintf("step %s: %v (rollback failed: %v)", e.step, e.err, e.rollbackErr)
	}
	return fmt.Sprintf("step %s: %v", e.step, e.err)
}

func (e *sagaError) Unwrap() error { return e.err }

// saga runs steps in order. When a step fails, the undo of every completed
// step runs in reverse order.
type saga struct {
	steps []sagaStep
	log   zerolog.Logger
}

func newSaga(log zerolog.Logger, steps ...sagaStep) *saga {
	return &saga{steps: steps, log: log}
}

// run returns nil or a *sagaError. Compensation uses a context detached from
// ctx so a cancelled request still cleans up after itself.
func (s *saga) run(ctx context.Context) error {
	done := make([]sagaStep, 0, len(s.steps))
	for _, step := range s.steps {
		err := ctx.Err()
		if err == nil {
			err = step.do(ctx)
		}
		if err != nil {
			serr := &sagaError{step: step.name, err: err}
			serr.rolledBack, serr.rollbackErr = s.compensate(context.WithoutCancel(ctx), done)
			return serr
		}
		done = append(done, step)
	}
	return nil
}

func (s *saga) compensate(ctx context.Context, done []sagaStep) (bool, error) {
	var errs []error
	undone := false
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.undo == nil {
			continue
		}
		undone = true
		if err := step.undo(ctx); err != nil {
			s.log.Error().Err(err).Str("step", step.name).Msg("compensation failed")
			errs = append(errs, fmt.Errorf("undo %s: %w", step.name, err))
			continue
		}
		s.log.Info().Str("step", step.name).Msg("step compensated")
	}
	return undone, errors.Join(errs...)
}

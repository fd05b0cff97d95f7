package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// sagaStep is one forward action of a multi-store write and the action that undoes it
type sagaStep struct {
	name       string
	forward    func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga runs steps in order. When a step fails, the steps already completed
// are compensated in reverse order. Compensation failures are logged and the
// original error is returned.
func runSaga(ctx context.Context, steps ...sagaStep) error {
	done := make([]sagaStep, 0, len(steps))
	for _, step := range steps {
		if err := step.forward(ctx); err != nil {
			compensate(context.WithoutCancel(ctx), done)
			return fmt.Errorf("%s: %w", step.name, err)
		}
		done = append(done, step)
	}
	return nil
}

func compensate(ctx context.Context, done []sagaStep) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			zap.S().Errorw("compensation failed", "step", step.name, "error", err)
			continue
		}
		zap.S().Infow("compensated step", "step", step.name)
	}
}

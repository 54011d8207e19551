package validator

import (
	"context"
	"time"
)

// Observer is notified about every rule invocation and every completed
// field validation. Implementations must be safe for concurrent use.
type Observer interface {
	RuleEvaluated(ctx context.Context, rule string, valid bool, elapsed time.Duration)
	FieldValidated(ctx context.Context, field string, valid, skipped bool, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) RuleEvaluated(context.Context, string, bool, time.Duration) {}

func (nopObserver) FieldValidated(context.Context, string, bool, bool, time.Duration) {}

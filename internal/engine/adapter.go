package engine

import (
	"context"
	"time"
)

// timeoutEngine bounds every call of the wrapped engine.
type timeoutEngine struct {
	Engine
	timeout time.Duration
}

// WithTimeout returns an Engine whose Generate calls are cancelled after d.
// A nil engine or non-positive d is returned unchanged.
func WithTimeout(e Engine, d time.Duration) Engine {
	if e == nil || d <= 0 {
		return e
	}
	return &timeoutEngine{Engine: e, timeout: d}
}

func (t *timeoutEngine) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Engine.Generate(ctx, req)
}

package orchestrator

import (
	"context"

	"financefirst/risk-api/internal/domain"
)

// Pool bounds how many evaluations run concurrently. Each inbound request
// claims a worker slot before the pipeline starts; callers block (or bail
// out on cancellation) while the pool is saturated.
type Pool struct {
	orchestrator *Orchestrator
	slots        chan struct{}
}

// NewPool creates a pool with the given worker count.
func NewPool(o *Orchestrator, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		orchestrator: o,
		slots:        make(chan struct{}, workers),
	}
}

// Submit runs an evaluation on the pool, waiting for a free slot first.
func (p *Pool) Submit(ctx context.Context, req *domain.EvaluationRequest) (*domain.Evaluation, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.slots }()

	return p.orchestrator.Evaluate(ctx, req)
}

// InFlight reports how many evaluations are currently running.
func (p *Pool) InFlight() int {
	return len(p.slots)
}

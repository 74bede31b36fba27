package attendance

import (
	"context"
	"fmt"
	"runtime"

	"github.com/warp/attendance-engine/generic"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// BATCH - Independent employees in parallel
// =============================================================================

// BatchResult holds one employee's outcome. Exactly one of Stats and Err is set.
type BatchResult struct {
	EmployeeID generic.EmployeeID
	Stats      *EmployeeStats
	Err        error
}

// ComputeBatch evaluates every input with at most workers goroutines. A
// failing employee is reported in its result and never stops the others.
// Results are in input order. Inputs not yet started when ctx is done
// report ctx.Err().
func (e *Engine) ComputeBatch(ctx context.Context, inputs []MonthInput, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]BatchResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, in := range inputs {
		i, in := i, in // per-iteration copies; go directive is 1.21
		g.Go(func() error {
			results[i] = e.computeOne(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		e.logger.Warn("attendance batch finished with failures",
			"policy_version", e.version.ID,
			"employees", len(inputs),
			"failed", failed)
	}
	return results
}

func (e *Engine) computeOne(ctx context.Context, in MonthInput) (res BatchResult) {
	res.EmployeeID = in.Employee.ID
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res.Stats = nil
			res.Err = &EvaluationError{EmployeeID: in.Employee.ID, Err: fmt.Errorf("evaluation panicked: %v", p)}
		}
	}()

	stats, err := e.ComputeMonth(in)
	if err != nil {
		e.logger.Warn("attendance evaluation failed",
			"employee_id", in.Employee.ID,
			"month", in.Month.String(),
			"error", err)
	}
	res.Stats, res.Err = stats, err
	return res
}

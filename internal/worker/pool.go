// Package worker provides a bounded-concurrency helper for fan-out
// retrieval work, such as prefetching site metadata for a ranked batch of
// candidate hosts.
package worker

import (
	"context"
	"sync"
)

// Map runs fn over every input with at most workers goroutines and returns
// the outputs in input order. Callers that need deterministic downstream
// processing iterate the returned slice sequentially.
//
// Cancellation is cooperative: fn receives ctx and is expected to honor it.
// Map itself always drains all inputs so the output slice is fully populated.
func Map[In, Out any](ctx context.Context, workers int, inputs []In, fn func(context.Context, In) Out) []Out {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	out := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return out
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				out[i] = fn(ctx, inputs[i])
			}
		}()
	}
	for i := range inputs {
		indices <- i
	}
	close(indices)
	wg.Wait()
	return out
}

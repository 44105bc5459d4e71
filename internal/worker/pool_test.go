package worker

import (
	"context"
	"strconv"
	"sync"
	"testing"
)

func TestMapPreservesOrder(t *testing.T) {
	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}
	out := Map(context.Background(), 8, inputs, func(_ context.Context, n int) string {
		return "v" + strconv.Itoa(n*2)
	})
	if len(out) != len(inputs) {
		t.Fatalf("len = %d, want %d", len(out), len(inputs))
	}
	for i, v := range out {
		if want := "v" + strconv.Itoa(i*2); v != want {
			t.Errorf("out[%d] = %q, want %q", i, v, want)
		}
	}
}

func TestMapEmptyInput(t *testing.T) {
	out := Map(context.Background(), 4, nil, func(_ context.Context, n int) int { return n })
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestMapBoundsConcurrency(t *testing.T) {
	const workers = 3
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	gate := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			gate <- struct{}{}
		}
	}()

	Map(context.Background(), workers, make([]int, 20), func(_ context.Context, _ int) int {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		<-gate

		mu.Lock()
		active--
		mu.Unlock()
		return 0
	})

	if maxSeen > workers {
		t.Errorf("observed %d concurrent tasks, limit is %d", maxSeen, workers)
	}
}

func TestMapZeroWorkers(t *testing.T) {
	out := Map(context.Background(), 0, []int{1, 2, 3}, func(_ context.Context, n int) int { return n + 1 })
	if len(out) != 3 || out[0] != 2 || out[2] != 4 {
		t.Errorf("out = %v", out)
	}
}

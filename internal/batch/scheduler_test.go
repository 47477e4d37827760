package batch

import (
	"sync"
	"testing"
)

func TestSchedulerProcessesEveryItemExactlyOnce(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	results := make([]int, len(items))
	var mu sync.Mutex
	seen := make([]bool, len(items))

	s := Scheduler[int, int]{
		NumWorkers: 3,
		Process:    func(x int) int { return x * x },
		Write: func(idx int, out int) {
			mu.Lock()
			defer mu.Unlock()
			results[idx] = out
			seen[idx] = true
		},
	}

	i := 0
	s.Run(func() (int, int, bool) {
		if i >= len(items) {
			return 0, 0, false
		}
		idx := i
		v := items[i]
		i++
		return v, idx, true
	})

	for idx, v := range items {
		if !seen[idx] {
			t.Fatalf("item %d never processed", idx)
		}
		if results[idx] != v*v {
			t.Fatalf("results[%d] = %d, want %d", idx, results[idx], v*v)
		}
	}
}

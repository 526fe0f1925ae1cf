package concurrent

import (
	"sync"

	"github.com/zeusync/thinui/pkg/sequence"
)

// Throttle runs action for each element with at most concurrency goroutines
// at a time, and waits for all of them.
func Throttle[T any](i *sequence.Iterator[T], concurrency int, action func(T)) {
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for value := range i.Seq() {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			action(value)
		}()
	}
	wg.Wait()
}

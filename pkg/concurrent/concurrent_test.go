package concurrent

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/thinui/pkg/sequence"
)

func TestThrottle(t *testing.T) {
	var running, peak, done atomic.Int64
	values := make([]int, 32)

	Throttle(sequence.From(values), 4, func(int) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		done.Add(1)
	})

	assert.Equal(t, int64(32), done.Load())
	assert.LessOrEqual(t, peak.Load(), int64(4))
}

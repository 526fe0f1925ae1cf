package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterTakeCollect(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6}).
		Filter(func(v int) bool { return v%2 == 0 }).
		Take(2)

	assert.Equal(t, []int{2, 4}, it.Collect())
}

func TestFindStopsEarly(t *testing.T) {
	visited := 0
	it := FromSeq(func(yield func(int) bool) {
		for i := 0; i < 100; i++ {
			visited++
			if !yield(i) {
				return
			}
		}
	})

	v, ok := it.Find(func(v int) bool { return v == 3 })
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 4, visited)

	_, ok = From([]int{1}).Find(func(int) bool { return false })
	assert.False(t, ok)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 3, From([]string{"a", "b", "c"}).Count())
	assert.Equal(t, 0, From([]string{"a"}).Take(0).Count())
}

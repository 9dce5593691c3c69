package utils

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000} {
		var count int64
		Parallelize(n, func(start, end int) {
			atomic.AddInt64(&count, int64(end-start))
		})
		require.Equal(t, int64(n), count, "n=%d", n)
	}
}

func TestParallelizeRespectsMaxCpus(t *testing.T) {
	seen := make([]bool, 100)
	Parallelize(100, func(start, end int) {
		for i := start; i < end; i++ {
			seen[i] = true
		}
	}, 1)
	for i, ok := range seen {
		require.True(t, ok, "index %d not visited", i)
	}
}

func TestRandomFrElement(t *testing.T) {
	src := bytes.NewReader(make([]byte, 60))
	e, err := RandomFrElement(src)
	require.NoError(t, err)
	require.True(t, e.IsZero())

	// not enough bytes left
	_, err = RandomFrElement(src)
	require.Error(t, err)
}

package batch

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PerRowResults(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	res := Run(context.Background(), items, 2, func(_ context.Context, n int) (string, error) {
		if n%2 == 0 {
			return "", errors.New("even")
		}
		return strconv.Itoa(n), nil
	})

	require.Len(t, res, 5)
	assert.Equal(t, 2, res.Failed())
	assert.False(t, res.AllOK())
	for i, r := range res {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, "1", res[0].ID)
	assert.Equal(t, "even", res[1].Error)
	assert.True(t, res[4].OK)
}

func TestRun_RespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32

	Run(context.Background(), make([]int, 20), 3, func(context.Context, int) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return "", nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Run(ctx, []string{"a", "b"}, 0, func(context.Context, string) (string, error) {
		t.Fatal("fn must not run after cancel")
		return "", nil
	})
	assert.Equal(t, 2, res.Failed())
	assert.ErrorIs(t, res[0].Err, context.Canceled)
}

package promise_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsarahq/muse/promise"
)

func TestResolvedExtract(t *testing.T) {
	p := promise.Resolved(5)
	v, err := p.Extract()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestFailedExtract(t *testing.T) {
	boom := errors.New("boom")
	p := promise.Failed[int](boom)
	_, err := p.Extract()
	assert.Equal(t, boom, err)
}

func TestMakeRunsAsynchronously(t *testing.T) {
	done := make(chan struct{})
	p := promise.Make(func() (int, error) {
		<-done
		return 7, nil
	})

	time.Sleep(10 * time.Millisecond)
	close(done)

	v, err := p.Extract()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMapTransformsValue(t *testing.T) {
	p := promise.Resolved(3)
	mapped := promise.Map(p, func(v int) (string, error) {
		return "n=3", nil
	})
	v, err := mapped.Extract()
	require.NoError(t, err)
	assert.Equal(t, "n=3", v)
}

func TestMapShortCircuitsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := promise.Failed[int](boom)
	called := false
	mapped := promise.Map(p, func(v int) (string, error) {
		called = true
		return "", nil
	})
	_, err := mapped.Extract()
	assert.Equal(t, boom, err)
	assert.False(t, called)
}

func TestFlatMapFlattens(t *testing.T) {
	p := promise.Resolved(2)
	chained := promise.FlatMap(p, func(v int) *promise.Promise[int] {
		return promise.Resolved(v * 10)
	})
	v, err := chained.Extract()
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestAllPreservesOrder(t *testing.T) {
	var ps []*promise.Promise[int]
	for i := 0; i < 5; i++ {
		i := i
		ps = append(ps, promise.Make(func() (int, error) {
			time.Sleep(time.Duration(5-i) * time.Millisecond)
			return i, nil
		}))
	}

	results, err := promise.All(ps).Extract()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, results)
}

func TestAllFailsFastOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	ps := []*promise.Promise[int]{
		promise.Resolved(1),
		promise.Failed[int](boom),
		promise.Resolved(3),
	}

	_, err := promise.All(ps).Extract()
	assert.Equal(t, boom, err)
}

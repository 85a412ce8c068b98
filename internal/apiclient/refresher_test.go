package apiclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/luxclient/internal/infra/logging"
	"github.com/mkrupp/luxclient/internal/repo/credential"
)

func TestRefresherJoinsFlight(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	release := make(chan struct{})
	errRefresh := errors.New("refresh rejected")

	r := newRefresher(func(context.Context) error {
		calls.Add(1)
		<-release

		return errRefresh
	}, credential.NewMemoryStore(), time.Second, logging.NewNopLogger())

	const n = 5

	var wg sync.WaitGroup

	errs := make([]error, n)
	call := func(i int) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			errs[i] = r.do(context.Background(), "")
		}()
	}

	call(0)

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()

		return r.current != nil
	}, time.Second, time.Millisecond)

	// The flight cannot finish before release is closed, so everyone else joins it.
	for i := 1; i < n; i++ {
		call(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, errRefresh)
	}

	assert.Equal(t, int64(1), calls.Load())

	r.mu.Lock()
	assert.Nil(t, r.current, "flight is cleared after completion")
	r.mu.Unlock()
}

func TestRefresherRecoversFromPanic(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	r := newRefresher(func(context.Context) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}

		return nil
	}, credential.NewMemoryStore(), time.Second, logging.NewNopLogger())

	err := r.do(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "boom")

	require.NoError(t, r.do(context.Background(), ""), "a panicking flight must not block the next one")
	assert.Equal(t, int64(2), calls.Load())
}

func TestRefresherSkipsWhenTokenAlreadyRotated(t *testing.T) {
	t.Parallel()

	store := credential.NewMemoryStore()
	require.NoError(t, store.SetPair(context.Background(), "A2", "R2"))

	var calls atomic.Int64

	r := newRefresher(func(context.Context) error {
		calls.Add(1)

		return nil
	}, store, time.Second, logging.NewNopLogger())

	require.NoError(t, r.do(context.Background(), "A1"))
	assert.Equal(t, int64(0), calls.Load())

	require.NoError(t, r.do(context.Background(), "A2"))
	assert.Equal(t, int64(1), calls.Load())
}

func TestRefresherTimeout(t *testing.T) {
	t.Parallel()

	r := newRefresher(func(ctx context.Context) error {
		<-ctx.Done()

		return transportError(ctx.Err())
	}, credential.NewMemoryStore(), 20*time.Millisecond, logging.NewNopLogger())

	err := r.do(context.Background(), "")
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

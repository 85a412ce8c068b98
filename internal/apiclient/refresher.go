package apiclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkrupp/luxclient/internal/infra/logging"
	"github.com/mkrupp/luxclient/internal/repo/credential"
)

// flight is one refresh cycle. err is written before done is closed.
type flight struct {
	done chan struct{}
	err  error
}

// refresher coordinates token refreshes so that at most one refresh call is in flight.
// Callers arriving while a refresh runs join it and observe its outcome.
type refresher struct {
	mu      sync.Mutex
	current *flight

	refresh func(ctx context.Context) error
	store   credential.Store
	timeout time.Duration
	log     logging.Logger
}

func newRefresher(
	refresh func(ctx context.Context) error,
	store credential.Store,
	timeout time.Duration,
	log logging.Logger,
) *refresher {
	return &refresher{
		refresh: refresh,
		store:   store,
		timeout: timeout,
		log:     log,
	}
}

// do joins the running refresh or starts one. rejected is the access token the caller's
// request was rejected with; when the store already holds a different token, a refresh
// completed in the meantime and do returns nil without starting another one. An empty
// rejected token always refreshes.
//
// The refresh runs detached from ctx: cancelling ctx stops this caller's wait only.
func (r *refresher) do(ctx context.Context, rejected string) error {
	r.mu.Lock()

	f := r.current
	if f == nil {
		if rejected != "" {
			access, _, err := r.store.GetAccess(ctx)
			if err != nil {
				r.mu.Unlock()

				return internalError("Could not read credentials", err)
			}

			if access != "" && access != rejected {
				r.mu.Unlock()
				r.log.DebugContext(ctx, "access token already rotated, skipping refresh")

				return nil
			}
		}

		f = &flight{done: make(chan struct{})}
		r.current = f

		go r.run(context.WithoutCancel(ctx), f)
	} else {
		r.log.DebugContext(ctx, "joining refresh in flight")
	}

	r.mu.Unlock()

	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return transportError(ctx.Err())
	}
}

func (r *refresher) run(ctx context.Context, f *flight) {
	defer func() {
		if p := recover(); p != nil {
			r.log.ErrorContext(ctx, "refresh panicked", "panic", p)
			f.err = sessionExpired(fmt.Errorf("refresh panicked: %v", p))
		}

		r.mu.Lock()
		r.current = nil
		r.mu.Unlock()

		close(f.done)
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()

	r.log.InfoContext(ctx, "refreshing credentials")

	if f.err = r.refresh(ctx); f.err != nil {
		r.log.WarnContext(ctx, "refresh failed", "duration", time.Since(start), "error", f.err)

		return
	}

	r.log.InfoContext(ctx, "credentials refreshed", "duration", time.Since(start))
}

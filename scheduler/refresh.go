package scheduler

import (
	"context"
	"errors"
	"georeport/model"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultRefreshTimeout  = 10 * time.Second
	DefaultRetryBackoff    = 100 * time.Millisecond
)

var ErrAlreadyStarted = errors.New("refresher already started")

type LoadFunc func(ctx context.Context) ([]model.Report, error)

// ApplyFunc receives each fresh snapshot. It runs under the refresher's lock
// and must not call Stop.
type ApplyFunc func(reports []model.Report)

// Refresher re-pulls reports on a fixed interval and hands each snapshot to
// its owner. Once Stop has begun no snapshot is applied, including one whose
// load was already in flight.
type Refresher struct {
	Timeout time.Duration
	Retries uint64
	Backoff time.Duration

	clock    clockwork.Clock
	interval time.Duration
	load     LoadFunc
	apply    ApplyFunc

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewRefresher(clock clockwork.Clock, interval time.Duration, load LoadFunc, apply ApplyFunc) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		Timeout:  DefaultRefreshTimeout,
		Backoff:  DefaultRetryBackoff,
		clock:    clock,
		interval: interval,
		load:     load,
		apply:    apply,
	}
}

// Start loads immediately and then once per interval until Stop is called or
// ctx is done. The first load happens on the refresher's goroutine.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true
	if r.stopped {
		return nil
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
	return nil
}

// Stop cancels the timer and any in-flight load and waits for the loop to
// exit. It is safe to call more than once.
func (r *Refresher) Stop() {
	r.mu.Lock()
	r.stopped = true
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Active reports whether the refresher is started and not yet stopped.
func (r *Refresher) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.stopped
}

func (r *Refresher) Interval() time.Duration {
	return r.interval
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	reports, err := r.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("refresh failed: %v", err)
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || ctx.Err() != nil {
		return
	}
	r.apply(reports)
}

func (r *Refresher) fetch(ctx context.Context) ([]model.Report, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	backoff := retry.WithMaxRetries(r.Retries, retry.NewExponential(r.backoff()))

	var reports []model.Report
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		rs, err := r.load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		reports = rs
		return nil
	})
	return reports, err
}

func (r *Refresher) backoff() time.Duration {
	if r.Backoff <= 0 {
		return DefaultRetryBackoff
	}
	return r.Backoff
}

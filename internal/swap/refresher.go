package swap

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/metrics"
)

// Update is one refresher emission: the quote (or pipeline error) for the
// exact input tuple that produced it.
type Update struct {
	Input Input
	Quote SwapQuote
	Err   error
}

// Refresher re-runs the quote pipeline on a fixed interval so a displayed
// quote never goes stale while the user is deciding. Every in-flight run is
// tagged with the input tuple and generation at dispatch; completions whose
// generation no longer matches are discarded silently, so an older run can
// never overwrite a quote belonging to newer inputs.
type Refresher struct {
	svc    *Service
	logger *logrus.Logger

	mu         sync.Mutex
	input      Input
	generation uint64
	started    bool

	trigger chan struct{}
	updates chan Update
	stop    chan struct{}
	done    chan struct{}
}

func NewRefresher(svc *Service, logger *logrus.Logger) *Refresher {
	return &Refresher{
		svc:     svc,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		updates: make(chan Update, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Updates delivers the latest quote per cycle. The channel holds at most one
// update; an unread update is overwritten in place, never merged.
func (r *Refresher) Updates() <-chan Update {
	return r.updates
}

// Start begins polling for the given input tuple. It returns immediately;
// the first quote is dispatched right away, then on every interval tick.
func (r *Refresher) Start(ctx context.Context, in Input) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.input = in
	r.mu.Unlock()

	go r.loop(ctx)
	r.kick()
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.svc.Config().RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-r.trigger:
			ticker.Reset(r.svc.Config().RefreshInterval)
			r.dispatch(ctx)
		case <-ticker.C:
			r.dispatch(ctx)
		}
	}
}

// dispatch runs one pipeline cycle against a snapshot of the current inputs.
// The fetch itself runs off the loop goroutine; a slow completion must not
// delay the next tick or a retrigger.
func (r *Refresher) dispatch(ctx context.Context) {
	r.mu.Lock()
	in := r.input
	gen := r.generation
	r.mu.Unlock()

	go func() {
		quote, err := r.svc.Quote(ctx, in)

		r.mu.Lock()
		current := r.generation
		r.mu.Unlock()
		if current != gen {
			// Inputs changed while this run was in flight.
			metrics.ObserveStaleResult()
			r.logger.WithField("pair", in.SourceToken.String()+"/"+in.DestinationToken.String()).
				Debug("discarding stale quote completion")
			return
		}

		r.publish(Update{Input: in, Quote: quote, Err: err})
	}()
}

// publish replaces any unconsumed update with the fresh one.
func (r *Refresher) publish(u Update) {
	for {
		select {
		case r.updates <- u:
			return
		default:
		}
		select {
		case <-r.updates:
		default:
		}
	}
}

// SetInput swaps the polled input tuple. The pending cycle's result is
// invalidated and a fresh quote is dispatched immediately. A tuple equal to
// the current one is a no-op.
func (r *Refresher) SetInput(in Input) {
	r.mu.Lock()
	if r.input.Equal(in) {
		r.mu.Unlock()
		return
	}
	r.input = in
	r.generation++
	r.mu.Unlock()

	r.kick()
}

func (r *Refresher) kick() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the polling loop. The generation bump drops any in-flight
// completion; the loop exits before the next tick.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.generation++
	r.mu.Unlock()

	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.done
}

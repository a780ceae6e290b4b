package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"walrus/models"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultLookahead bounds how far ahead the dispatcher looks for timers
	DefaultLookahead = 10 * 24 * time.Hour

	// DefaultIdlePoll is how often an idle dispatcher re-polls so that far
	// future timers are picked up once they enter the lookahead window
	DefaultIdlePoll = 1 * time.Hour
)

// errRewait restarts the wait cycle after the wakeup signal fired while armed
var errRewait = errors.New("timer dispatcher woken while armed")

// DispatcherState describes what the dispatcher loop is currently doing
type DispatcherState int

const (
	DispatcherStopped DispatcherState = iota
	DispatcherIdle
	DispatcherArmed
	DispatcherFiring
	DispatcherRestarting
)

func (s DispatcherState) String() string {
	switch s {
	case DispatcherIdle:
		return "idle"
	case DispatcherArmed:
		return "armed"
	case DispatcherFiring:
		return "firing"
	case DispatcherRestarting:
		return "restarting"
	default:
		return "stopped"
	}
}

// DispatcherStatus is a point-in-time snapshot of the dispatcher
type DispatcherStatus struct {
	State    string        `json:"state"`
	Current  *models.Timer `json:"current,omitempty"`
	Fired    int64         `json:"fired"`
	Restarts int64         `json:"restarts"`
}

// DispatcherOption configures a TimerDispatcher
type DispatcherOption func(*TimerDispatcher)

// WithLookahead overrides the lookahead window
func WithLookahead(window time.Duration) DispatcherOption {
	return func(d *TimerDispatcher) {
		d.window = window
	}
}

// WithIdlePoll overrides how long an idle dispatcher waits before re-polling
func WithIdlePoll(interval time.Duration) DispatcherOption {
	return func(d *TimerDispatcher) {
		d.idlePoll = interval
	}
}

// WithClock overrides the clock used to compute sleep durations
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *TimerDispatcher) {
		d.now = now
	}
}

// WithBackOff overrides the restart backoff policy
func WithBackOff(newBackOff func() backoff.BackOff) DispatcherOption {
	return func(d *TimerDispatcher) {
		d.newBackOff = newBackOff
	}
}

// WithObserver reports fired timers and restarts to observer
func WithObserver(observer DispatcherObserver) DispatcherOption {
	return func(d *TimerDispatcher) {
		d.observer = observer
	}
}

type noopObserver struct{}

func (noopObserver) TimerFired(context.Context, models.EventKind, time.Duration) {}
func (noopObserver) DispatcherRestarted(context.Context)                        {}

// TimerDispatcher waits for the next due timer, fires it through the sink
// and re-arms itself whenever a sooner timer is created. One per process.
type TimerDispatcher struct {
	repo       TimerRepository
	sink       TimerSink
	observer   DispatcherObserver
	window     time.Duration
	idlePoll   time.Duration
	now        func() time.Time
	newBackOff func() backoff.BackOff

	// wakeup is level triggered: a send while nobody waits stays pending
	wakeup chan struct{}

	mu       sync.Mutex
	current  *models.Timer
	preempt  context.CancelFunc
	state    DispatcherState
	fired    int64
	restarts int64
}

// NewTimerDispatcher creates a dispatcher backed by repo that routes fired timers to sink
func NewTimerDispatcher(repo TimerRepository, sink TimerSink, opts ...DispatcherOption) *TimerDispatcher {
	d := &TimerDispatcher{
		repo:       repo,
		sink:       sink,
		observer:   noopObserver{},
		window:     DefaultLookahead,
		idlePoll:   DefaultIdlePoll,
		now:        func() time.Time { return time.Now().UTC() },
		newBackOff: defaultBackOff,
		wakeup:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 1 * time.Minute
	b.MaxElapsedTime = 0
	return b
}

// CreateTimer persists a new timer. If it is due within the lookahead window
// an idle dispatcher is woken, and if it is due before the armed timer the
// current wait is cancelled so the sooner timer is picked up.
func (d *TimerDispatcher) CreateTimer(ctx context.Context, event models.EventKind, createdAt, expiresAt time.Time, payload any) (*models.Timer, error) {
	if expiresAt.Before(createdAt) {
		return nil, ErrInvalidTimer
	}

	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
	}

	timer, err := d.repo.Create(ctx, event, createdAt.UTC(), expiresAt.UTC(), data)
	if err != nil {
		return nil, err
	}

	if timer.ExpiresAt.Sub(d.now()) <= d.window {
		d.signal()
	}

	d.mu.Lock()
	if d.current != nil && d.preempt != nil && timer.ExpiresAt.Before(d.current.ExpiresAt) {
		log.WithFields(log.Fields{
			"timerID":   timer.ID,
			"currentID": d.current.ID,
		}).Debug("New timer is due before the armed timer, restarting wait")
		d.preempt()
	}
	d.mu.Unlock()

	log.WithFields(log.Fields{
		"timerID":   timer.ID,
		"event":     timer.Event,
		"expiresAt": timer.ExpiresAt,
	}).Debug("Timer created")

	return timer, nil
}

// Start runs the dispatcher in the background.
// Returns a cleanup function that stops it and waits for it to exit.
func (d *TimerDispatcher) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.Info("Timer dispatcher started")
		d.Run(ctx)
		log.Info("Timer dispatcher shutting down (context cancelled)...")
	}()

	return func() {
		cancel()
		<-done
	}
}

// Run blocks until ctx is cancelled, firing timers as they come due.
// Storage failures restart the loop after a backoff; they never end it.
func (d *TimerDispatcher) Run(ctx context.Context) error {
	bo := d.newBackOff()
	bo.Reset()

	for {
		err := d.dispatchLoop(ctx, bo)
		if ctx.Err() != nil {
			d.setState(DispatcherStopped, nil)
			return ctx.Err()
		}

		d.mu.Lock()
		d.state = DispatcherRestarting
		d.current = nil
		d.restarts++
		d.mu.Unlock()
		d.observer.DispatcherRestarted(ctx)

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = d.idlePoll
		}
		log.WithError(err).WithField("retryIn", wait).Warn("Timer dispatcher failed, restarting")

		select {
		case <-ctx.Done():
			d.setState(DispatcherStopped, nil)
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (d *TimerDispatcher) dispatchLoop(ctx context.Context, bo backoff.BackOff) error {
	for {
		cycleCtx, cancel := context.WithCancel(ctx)
		d.mu.Lock()
		d.preempt = cancel
		d.mu.Unlock()

		timer, err := d.waitForTimer(cycleCtx)
		if err == nil {
			err = d.sleepUntilDue(cycleCtx, timer)
		}

		d.mu.Lock()
		d.preempt = nil
		d.mu.Unlock()
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, errRewait) || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}

		if err := d.fire(ctx, timer); err != nil {
			return err
		}
		bo.Reset()
	}
}

// waitForTimer returns the earliest timer in the window, blocking while there is none
func (d *TimerDispatcher) waitForTimer(ctx context.Context) (*models.Timer, error) {
	for {
		// Drained before querying so a timer created after the query still leaves the signal set
		d.clearSignal()

		timer, err := d.repo.Earliest(ctx, d.window)
		if err != nil {
			return nil, err
		}
		if timer != nil {
			d.setState(DispatcherArmed, timer)
			return timer, nil
		}

		d.setState(DispatcherIdle, nil)
		log.Debug("No timers within lookahead window, waiting")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-d.wakeup:
		case <-time.After(d.idlePoll):
		}
	}
}

func (d *TimerDispatcher) sleepUntilDue(ctx context.Context, timer *models.Timer) error {
	wait := timer.Until(d.now())
	if wait == 0 {
		return nil
	}

	log.WithFields(log.Fields{
		"timerID": timer.ID,
		"event":   timer.Event,
		"wait":    wait,
	}).Debug("Timer armed")

	sleep := time.NewTimer(wait)
	defer sleep.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.wakeup:
		return errRewait
	case <-sleep.C:
		return nil
	}
}

// fire deletes the timer and then hands it to the sink. A failed delete leaves
// the timer in storage so it is selected again after the restart.
func (d *TimerDispatcher) fire(ctx context.Context, timer *models.Timer) error {
	d.setState(DispatcherFiring, timer)

	if err := d.repo.Delete(ctx, timer.ID); err != nil {
		return err
	}

	late := d.now().Sub(timer.ExpiresAt)
	log.WithFields(log.Fields{
		"timerID": timer.ID,
		"event":   timer.Event,
		"late":    late,
	}).Debug("Firing timer")

	d.sink.Dispatch(ctx, timer)
	d.observer.TimerFired(ctx, timer.Event, late)

	d.mu.Lock()
	d.fired++
	d.current = nil
	d.mu.Unlock()
	return nil
}

// Status returns a snapshot of the dispatcher state
func (d *TimerDispatcher) Status() DispatcherStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := DispatcherStatus{
		State:    d.state.String(),
		Fired:    d.fired,
		Restarts: d.restarts,
	}
	if d.current != nil {
		current := *d.current
		status.Current = &current
	}
	return status
}

// Current returns a copy of the armed or firing timer, or nil
func (d *TimerDispatcher) Current() *models.Timer {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return nil
	}
	current := *d.current
	return &current
}

// State returns the current loop state
func (d *TimerDispatcher) State() DispatcherState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *TimerDispatcher) setState(state DispatcherState, current *models.Timer) {
	d.mu.Lock()
	d.state = state
	d.current = current
	d.mu.Unlock()
}

func (d *TimerDispatcher) signal() {
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

func (d *TimerDispatcher) clearSignal() {
	select {
	case <-d.wakeup:
	default:
	}
}

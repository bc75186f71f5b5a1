package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateHalfOpen: "half-open",
	StateOpen:     "open",
}

// String returns the string representation of the state
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// MaxRequests is both the number of probes admitted while half-open and
	// the number of successes needed to close again.
	MaxRequests uint32
	// Interval is the closed-state window after which counts are cleared.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ReadyToTrip decides, after each closed-state failure, whether to open.
	ReadyToTrip func(counts Counts) bool
	// OnStateChange observes every transition.
	OnStateChange func(name string, from State, to State)
	// IsSuccessful decides whether an error counts against the breaker.
	// Defaults to err == nil.
	IsSuccessful func(err error) bool
}

func (s Settings) withDefaults() Settings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = time.Minute
	}
	if s.ReadyToTrip == nil {
		s.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures > 5 }
	}
	if s.IsSuccessful == nil {
		s.IsSuccessful = func(err error) bool { return err == nil }
	}
	return s
}

// Counts holds request outcomes for the current window
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) record(success bool) {
	if success {
		c.TotalSuccesses++
		c.ConsecutiveSuccesses++
		c.ConsecutiveFailures = 0
		return
	}
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu     sync.Mutex
	state  State
	counts Counts
	// deadline ends the closed window or the open period; zero while half-open
	deadline time.Time
	// epoch changes on every window reset or transition so that results of
	// requests admitted earlier are dropped
	epoch uint64
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	b := &Breaker{
		name:     name,
		settings: settings.withDefaults(),
		now:      time.Now,
		state:    StateClosed,
	}
	b.deadline = b.now().Add(b.settings.Interval)
	return b
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.now())
	return b.state
}

// Counts returns a copy of the counts for the current window
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.now())
	return b.counts
}

// Execute runs req if the circuit breaker accepts it. The error from req
// is returned unchanged; ErrCircuitOpen or ErrTooManyRequests are returned
// without calling req. A panic in req is recorded as a failure and re-raised.
func (b *Breaker) Execute(req func() error) error {
	epoch, err := b.admit()
	if err != nil {
		return err
	}

	settled := false
	defer func() {
		if !settled {
			b.settle(epoch, false)
		}
	}()

	err = req()
	settled = true
	b.settle(epoch, b.settings.IsSuccessful(err))
	return err
}

// Do is Execute for requests that produce a value
func Do[T any](b *Breaker, req func() (T, error)) (T, error) {
	var result T
	err := b.Execute(func() error {
		var err error
		result, err = req()
		return err
	})
	return result, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.now())
	switch {
	case b.state == StateOpen:
		return 0, ErrCircuitOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		return 0, ErrTooManyRequests
	}
	b.counts.Requests++
	return b.epoch, nil
}

func (b *Breaker) settle(epoch uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.refresh(now)
	if epoch != b.epoch {
		return
	}

	b.counts.record(success)
	switch b.state {
	case StateClosed:
		if !success && b.settings.ReadyToTrip(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		if !success {
			b.transition(StateOpen, now)
		} else if b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
			b.transition(StateClosed, now)
		}
	}
}

// refresh applies the transitions that are due purely to time passing
func (b *Breaker) refresh(now time.Time) {
	if b.deadline.IsZero() || !now.After(b.deadline) {
		return
	}
	switch b.state {
	case StateClosed:
		b.counts = Counts{}
		b.deadline = now.Add(b.settings.Interval)
		b.epoch++
	case StateOpen:
		b.transition(StateHalfOpen, now)
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.counts = Counts{}
	b.epoch++
	switch to {
	case StateClosed:
		b.deadline = now.Add(b.settings.Interval)
	case StateOpen:
		b.deadline = now.Add(b.settings.Timeout)
	default:
		b.deadline = time.Time{}
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

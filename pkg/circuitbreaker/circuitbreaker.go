package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is rejecting calls. Callers
// that need to distinguish a tripped breaker from a failing backend
// test for it with errors.Is.
var ErrOpen = errors.New("circuit breaker open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

// Settings configure a breaker. Threshold consecutive failures open
// it; after Cooldown a single probe call is let through, and its
// outcome decides whether the breaker closes again.
type Settings struct {
	Name      string
	Threshold int
	Cooldown  time.Duration
}

type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    state
	failures int
	openedAt time.Time
	probing  bool
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	if settings.Threshold <= 0 {
		settings.Threshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:      settings.Name,
		threshold: settings.Threshold,
		cooldown:  settings.Cooldown,
	}
}

// Execute runs fn unless the breaker is open. While half open only one
// probe call runs at a time; concurrent callers are rejected until the
// probe settles.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return fmt.Errorf("%s: %w", cb.name, ErrOpen)
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = stateHalfOpen
		cb.probing = true
		return true
	default:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if err != nil {
		cb.failures++
		// A failed probe reopens immediately regardless of the count.
		if cb.state == stateHalfOpen || cb.failures >= cb.threshold {
			cb.state = stateOpen
			cb.openedAt = time.Now()
		}
		return
	}

	cb.state = stateClosed
	cb.failures = 0
}

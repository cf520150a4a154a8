package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Settings configures the breakers created by a Manager.
type Settings struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that trips the breaker.
	FailureThreshold uint32
}

func DefaultSettings() Settings {
	return Settings{
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// IsOpen reports whether err was produced by a breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Manager hands out one breaker per upstream service.
type Manager struct {
	settings Settings
	breakers map[string]*gobreaker.CircuitBreaker
	mu       sync.Mutex
	log      *zap.Logger
}

func NewManager(settings Settings, log *zap.Logger) *Manager {
	return &Manager{
		settings: settings,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		log:      log,
	}
}

// Get returns the breaker for service, creating it on first use.
func (m *Manager) Get(service string) *gobreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[service]; ok {
		return cb
	}

	threshold := m.settings.FailureThreshold
	if threshold == 0 {
		threshold = DefaultSettings().FailureThreshold
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        service,
		MaxRequests: m.settings.MaxRequests,
		Interval:    m.settings.Interval,
		Timeout:     m.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	m.breakers[service] = cb
	return cb
}

// BreakerStatus is the readiness view of one breaker.
type BreakerStatus struct {
	State    string `json:"state"`
	Requests uint32 `json:"requests"`
	Failures uint32 `json:"consecutive_failures"`
}

func (m *Manager) Status() map[string]BreakerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]BreakerStatus, len(m.breakers))
	for name, cb := range m.breakers {
		counts := cb.Counts()
		out[name] = BreakerStatus{
			State:    cb.State().String(),
			Requests: counts.Requests,
			Failures: counts.ConsecutiveFailures,
		}
	}
	return out
}

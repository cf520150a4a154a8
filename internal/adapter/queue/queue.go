package queue

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/ports"
)

const (
	DriverNATS     = "nats"
	DriverRabbitMQ = "rabbitmq"
	DriverMemory   = "memory"
)

// New connects to the configured broker. An empty driver, or a broker that
// cannot be reached, yields an in-process queue so actions still run.
func New(driver, url string, log *zap.Logger) ports.MessageQueue {
	var (
		q   ports.MessageQueue
		err error
	)
	switch driver {
	case DriverNATS:
		q, err = NewNATSQueue(url, log)
	case DriverRabbitMQ:
		q, err = NewRabbitMQQueue(url, log)
	case "", DriverMemory:
		return NewMemoryQueue(log)
	default:
		err = fmt.Errorf("unknown queue driver %q", driver)
	}
	if err != nil {
		log.Warn("Message broker unavailable, events stay in-process", zap.String("driver", driver), zap.Error(err))
		return NewMemoryQueue(log)
	}
	return q
}

// MemoryQueue delivers messages synchronously to in-process subscribers.
type MemoryQueue struct {
	mu       sync.RWMutex
	handlers map[string][]func([]byte) error
	closed   bool
	log      *zap.Logger
}

func NewMemoryQueue(log *zap.Logger) *MemoryQueue {
	return &MemoryQueue{
		handlers: make(map[string][]func([]byte) error),
		log:      log,
	}
}

func (q *MemoryQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("memory queue: closed")
	}
	handlers := append([]func([]byte) error(nil), q.handlers[subject]...)
	q.mu.RUnlock()

	for _, h := range handlers {
		if err := h(data); err != nil {
			q.log.Error("Error processing message", zap.String("subject", subject), zap.Error(err))
		}
	}
	return nil
}

func (q *MemoryQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("memory queue: closed")
	}
	q.handlers[subject] = append(q.handlers[subject], handler)
	return nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.handlers = nil
	return nil
}

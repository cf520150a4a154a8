package mocks

import "sync"

// MockMessageQueue is a mock implementation of MessageQueue interface
type MockMessageQueue struct {
	PublishFunc   func(subject string, data []byte) error
	SubscribeFunc func(subject string, handler func(data []byte) error) error
	CloseFunc     func() error

	mu        sync.Mutex
	Published map[string][][]byte
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{Published: make(map[string][][]byte)}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Published == nil {
		m.Published = make(map[string][][]byte)
	}
	m.Published[subject] = append(m.Published[subject], data)
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(data []byte) error) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(subject, handler)
	}
	return nil
}

func (m *MockMessageQueue) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Count returns how many messages were published on subject.
func (m *MockMessageQueue) Count(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published[subject])
}

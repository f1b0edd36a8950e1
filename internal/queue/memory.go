package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const memoryQueueCapacity = 1024

var errQueueClosed = errors.New("queue closed")

// MemoryQueue implements Queue with buffered channels, one per subject.
// It serves single-process deployments and tests.
type MemoryQueue struct {
	channels      map[string]chan []byte
	subscriptions map[string]context.CancelFunc
	closed        bool
	mu            sync.Mutex
}

func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		channels:      make(map[string]chan []byte),
		subscriptions: make(map[string]context.CancelFunc),
	}
}

// channel must be called with q.mu held
func (q *MemoryQueue) channel(subject string) chan []byte {
	if ch, ok := q.channels[subject]; ok {
		return ch
	}
	ch := make(chan []byte, memoryQueueCapacity)
	q.channels[subject] = ch
	return ch
}

// Publish copies data onto the subject's channel without blocking
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errQueueClosed
	}
	ch := q.channel(subject)
	q.mu.Unlock()

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	select {
	case ch <- dataCopy:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// Subscribe consumes the subject's channel in a background goroutine
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errQueueClosed
	}
	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ch := q.channel(subject)
	ctx, cancel := context.WithCancel(context.Background())
	q.subscriptions[subject] = cancel

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				// no redelivery in memory
				_ = handler(data)
			}
		}
	}()

	return nil
}

// Unsubscribe stops consuming a subject
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close stops all subscriptions; later publishes fail
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	q.closed = true
	return nil
}

// PendingCount returns the number of undelivered messages for a subject
func (q *MemoryQueue) PendingCount(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, ok := q.channels[subject]; ok {
		return len(ch)
	}
	return 0
}

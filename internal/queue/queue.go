package queue

import "context"

// SubjectModelTrained carries ModelTrainedEvent payloads
const SubjectModelTrained = "pricecast.model.trained"

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// Close closes the connection
	Close() error
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages. A non-nil error asks the
// backend to redeliver where it supports that.
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}

// nopQueue drops everything. Used when no event bus is configured.
type nopQueue struct{}

func (nopQueue) Publish(context.Context, string, []byte) error { return nil }
func (nopQueue) Subscribe(string, MessageHandler) error        { return nil }
func (nopQueue) Unsubscribe(string) error                      { return nil }
func (nopQueue) Close() error                                  { return nil }

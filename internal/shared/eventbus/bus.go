package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docstore/internal/shared/logger"
)

// Event is anything that can be published on the bus.
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler is the function signature for event subscribers.
type Handler func(ctx context.Context, event Event) error

// Bus distributes events to subscribed handlers. Dispatch is synchronous per
// publish unless AsyncProcessing is enabled; failed handlers are retried up to
// MaxRetries times.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   Config
}

// Config holds bus behaviour knobs.
type Config struct {
	AsyncProcessing bool
	MaxRetries      int
	RetryDelay      time.Duration
}

// DefaultConfig returns the default bus configuration.
func DefaultConfig() Config {
	return Config{
		AsyncProcessing: false,
		MaxRetries:      3,
		RetryDelay:      100 * time.Millisecond,
	}
}

// New creates an event bus with default configuration.
func New(log logger.Logger) *Bus {
	return NewWithConfig(log, DefaultConfig())
}

// NewWithConfig creates an event bus with custom configuration.
func NewWithConfig(log logger.Logger, config Config) *Bus {
	if log == nil {
		log = noopLogger{}
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   log,
		config:   config,
	}
}

// Subscribe adds a handler for a specific event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debugf("Subscribed handler for event type: %s", eventType)
}

// Unsubscribe removes all handlers for a specific event type.
func (b *Bus) Unsubscribe(eventType string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.handlers, eventType)
}

// SubscriberCount returns the number of handlers for an event type.
func (b *Bus) SubscriberCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Publish sends an event to all handlers registered for its type.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	if b.config.AsyncProcessing {
		return b.publishAsync(ctx, event, handlers)
	}
	return b.publishSync(ctx, event, handlers)
}

// PublishAndForget publishes an event in the background, logging failures.
func (b *Bus) PublishAndForget(ctx context.Context, event Event) {
	go func() {
		if err := b.Publish(ctx, event); err != nil {
			b.logger.Errorf("Failed to publish event %s: %v", event.Type(), err)
		}
	}()
}

func (b *Bus) publishSync(ctx context.Context, event Event, handlers []Handler) error {
	for i, handler := range handlers {
		if err := b.runHandler(ctx, event, handler, i); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) publishAsync(ctx context.Context, event Event, handlers []Handler) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(handlers))

	for i, handler := range handlers {
		wg.Add(1)
		go func(h Handler, idx int) {
			defer wg.Done()
			if err := b.runHandler(ctx, event, h, idx); err != nil {
				errCh <- err
			}
		}(handler, i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// runHandler executes a handler with retry.
func (b *Bus) runHandler(ctx context.Context, event Event, handler Handler, idx int) error {
	var lastErr error

	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(b.config.RetryDelay)
		}

		if err := handler(ctx, event); err != nil {
			lastErr = err
			b.logger.Errorf("Handler %d failed for event %s: %v", idx, event.Type(), err)
			continue
		}
		return nil
	}

	return fmt.Errorf("handler failed after %d attempts: %w", b.config.MaxRetries+1, lastErr)
}

// BasicEvent is the default Event implementation.
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewBasicEvent creates an event carrying arbitrary data.
func NewBasicEvent(eventType string, data interface{}) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now().UTC(),
		source:    "docstore",
	}
}

// NewEventWithSource creates an event attributed to an originating component.
func NewEventWithSource(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now().UTC(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }

// noopLogger discards everything. Used when no logger is supplied.
type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                          {}
func (noopLogger) Info(args ...interface{})                           {}
func (noopLogger) Warn(args ...interface{})                           {}
func (noopLogger) Error(args ...interface{})                          {}
func (noopLogger) Fatal(args ...interface{})                          {}
func (noopLogger) Debugf(format string, args ...interface{})          {}
func (noopLogger) Infof(format string, args ...interface{})           {}
func (noopLogger) Warnf(format string, args ...interface{})           {}
func (noopLogger) Errorf(format string, args ...interface{})          {}
func (noopLogger) Fatalf(format string, args ...interface{})          {}
func (noopLogger) WithFields(map[string]interface{}) logger.Logger    { return noopLogger{} }
func (noopLogger) WithContext(context.Context) logger.Logger          { return noopLogger{} }
func (noopLogger) WithComponent(string) logger.Logger                 { return noopLogger{} }

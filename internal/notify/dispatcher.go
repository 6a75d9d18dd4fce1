package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const sinkTimeout = 5 * time.Second

type job struct {
	event *Event
	email *Email
}

// Dispatcher hands events and emails to their sinks on a background worker.
// Emit and NotifyEmail never block the caller and never report failures;
// sink errors are logged and dropped.
type Dispatcher struct {
	emitter Emitter
	mailer  Mailer
	queue   chan job
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(emitter Emitter, mailer Mailer, buffer int, log *zap.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}

	d := &Dispatcher{
		emitter: emitter,
		mailer:  mailer,
		queue:   make(chan job, buffer),
		log:     log.With(zap.String("component", "dispatcher")),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Emit(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	d.enqueue(job{event: &event}, zap.String("event", event.Name))
}

func (d *Dispatcher) NotifyEmail(email Email) {
	d.enqueue(job{email: &email}, zap.String("template", email.Template))
}

func (d *Dispatcher) enqueue(j job, field zap.Field) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Dispatcher closed, dropping notification", field)
		return
	}

	select {
	case d.queue <- j:
	default:
		d.log.Warn("Notification queue full, dropping notification", field)
	}
}

// Close stops accepting work and waits until queued notifications are handled
// or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Notification sink panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	switch {
	case j.event != nil && d.emitter != nil:
		if err := d.emitter.Emit(ctx, *j.event); err != nil {
			d.log.Warn("Failed to emit event",
				zap.Error(err),
				zap.String("event", j.event.Name),
				zap.Strings("rooms", j.event.Audience.Rooms()),
			)
			return
		}
		d.log.Debug("Event emitted", zap.String("event", j.event.Name))

	case j.email != nil && d.mailer != nil:
		if err := d.mailer.Send(ctx, *j.email); err != nil {
			d.log.Warn("Failed to send email",
				zap.Error(fmt.Errorf("send %s: %w", j.email.Template, err)),
				zap.String("to", j.email.To),
			)
			return
		}
		d.log.Debug("Email queued", zap.String("template", j.email.Template))
	}
}

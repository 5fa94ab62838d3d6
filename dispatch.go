package accounts

import (
	"context"
	"sync"
)

// Dispatcher sends account emails off the request path. Enqueueing
// never blocks: when the queue is full the message is dropped with a
// warning, callers treat delivery as fire and forget.
type Dispatcher struct {
	mailer  Mailer
	tokens  TokenService
	baseURL string
	logger  Logger

	queue   chan *User
	workers int

	wg      sync.WaitGroup
	startMu sync.Mutex
	started bool
	cancel  context.CancelFunc
}

var _ Notifier = (*Dispatcher)(nil)

type DispatcherOption func(*Dispatcher)

func WithDispatcherQueueSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan *User, size)
		}
	}
}

func WithDispatcherWorkers(workers int) DispatcherOption {
	return func(d *Dispatcher) {
		if workers > 0 {
			d.workers = workers
		}
	}
}

func WithDispatcherLogger(l Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func NewDispatcher(mailer Mailer, tokens TokenService, baseURL string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mailer:  mailer,
		tokens:  tokens,
		baseURL: baseURL,
		logger:  defLogger{},
		queue:   make(chan *User, 64),
		workers: 2,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Start spins up the delivery workers. Safe to call once.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if d.started {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Stop cancels the workers and waits for in flight sends to finish.
// Queued messages that have not been picked up are dropped.
func (d *Dispatcher) Stop() {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if !d.started {
		return
	}
	d.started = false

	d.cancel()
	d.wg.Wait()
}

// ScheduleConfirmation enqueues a confirmation email for the user
// without blocking the caller.
func (d *Dispatcher) ScheduleConfirmation(user *User) {
	if user == nil {
		return
	}

	select {
	case d.queue <- user:
	default:
		d.logger.Warn("email queue saturated, dropping confirmation", "email", user.Email)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case user := <-d.queue:
			d.deliver(user)
		}
	}
}

func (d *Dispatcher) deliver(user *User) {
	msg, err := NewConfirmationMessage(d.baseURL, d.tokens, user)
	if err != nil {
		d.logger.Error("failed to build confirmation email", "email", user.Email, "error", err)
		return
	}

	if err := d.mailer.Send(msg); err != nil {
		d.logger.Error("failed to send confirmation email", "email", user.Email, "error", err)
		return
	}

	d.logger.Debug("confirmation email sent", "email", user.Email)
}

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"
)

var (
	ErrQueueFull      = errors.New("notify: queue full")
	ErrNoSender       = errors.New("notify: no sender for channel")
	ErrDispatcherDown = errors.New("notify: dispatcher stopped")
)

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts uint
	RetryDelay  time.Duration
	SendTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:     2,
		QueueSize:   256,
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
		SendTimeout: 20 * time.Second,
	}
}

// Dispatcher is a bounded queue drained by a fixed worker pool. Enqueue never
// blocks: a full queue drops the message.
type Dispatcher struct {
	cfg     DispatcherConfig
	senders map[Channel]Sender
	logger  *slog.Logger

	// OnResult, when set, is called once per message with the final
	// delivery error (nil on success). Dropped messages report
	// ErrQueueFull, ErrNoSender or ErrDispatcherDown.
	OnResult func(msg Message, err error)

	queue chan Message

	mu      sync.RWMutex
	stopped bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, senders map[Channel]Sender, logger *slog.Logger) *Dispatcher {
	def := DefaultDispatcherConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		cfg:     cfg,
		senders: senders,
		logger:  logger,
		queue:   make(chan Message, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for range d.cfg.Workers {
		d.wg.Add(1)
		go d.worker()
	}
	d.logger.Info("notification dispatcher started",
		"workers", d.cfg.Workers,
		"queue_size", d.cfg.QueueSize,
	)
}

// Stop refuses new messages, lets the workers drain what is queued and
// waits for them, or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue schedules msg for delivery and reports whether it was accepted.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if _, ok := d.senders[msg.Channel]; !ok {
		d.report(msg, ErrNoSender)
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.report(msg, ErrDispatcherDown)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("notification queue full, dropping message",
			slog.String("event", msg.Event),
			slog.String("channel", string(msg.Channel)),
		)
		d.report(msg, ErrQueueFull)
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	sender := d.senders[msg.Channel]
	log := d.logger.With(
		slog.String("event", msg.Event),
		slog.String("channel", string(msg.Channel)),
	)

	err := retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
			defer cancel()

			err := sender.Send(ctx, msg)
			if err != nil && IsPermanent(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Attempts(d.cfg.MaxAttempts),
		retry.Delay(d.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("notification attempt failed", slog.Uint64("attempt", uint64(n+1)), slog.Any("error", err))
		}),
	)

	if err != nil {
		log.Error("notification delivery failed", slog.Any("error", err))
	} else {
		log.Info("notification delivered")
	}
	d.report(msg, err)
}

func (d *Dispatcher) report(msg Message, err error) {
	if d.OnResult == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("notification result hook panicked", slog.Any("panic", rec))
		}
	}()
	d.OnResult(msg, err)
}

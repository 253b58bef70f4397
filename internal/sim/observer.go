package sim

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// OutcomeLogger logs each finished session through a structured logger.
type OutcomeLogger struct {
	logger *slog.Logger
}

func NewOutcomeLogger(logger *slog.Logger) *OutcomeLogger {
	return &OutcomeLogger{logger: logger}
}

func (l *OutcomeLogger) ObserveSession(index int, out SessionOutcome) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug("session finished",
		"session", index,
		"outcome", out.Outcome.String(),
		"rounds", out.Rounds,
		"levels", out.Final,
	)
}

// AsyncSessionObserver decouples observation from the simulation's hot
// path: events go through a bounded channel and overflow is dropped
// (and counted) instead of blocking workers.
type AsyncSessionObserver struct {
	next    SessionObserver
	events  chan sessionEvent
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type sessionEvent struct {
	index int
	out   SessionOutcome
}

func NewAsyncSessionObserver(next SessionObserver, buffer int) *AsyncSessionObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncSessionObserver{
		next:   next,
		events: make(chan sessionEvent, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveSession(ev.index, ev.out)
		}
	}()

	return o
}

func (o *AsyncSessionObserver) ObserveSession(index int, out SessionOutcome) {
	if o == nil {
		return
	}
	o.mu.RLock()
	if o.closed {
		o.mu.RUnlock()
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- sessionEvent{index: index, out: out}:
	default:
		o.dropped.Add(1)
	}
	o.mu.RUnlock()
}

// Dropped reports how many events were discarded due to a full buffer
// or a closed observer.
func (o *AsyncSessionObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close drains the buffer and waits for the forwarding goroutine.
func (o *AsyncSessionObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}

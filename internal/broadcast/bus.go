package broadcast

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber queue length used when none is set.
const DefaultBuffer = 64

type envelope struct {
	origin string
	msg    Message
}

type subscriber struct {
	id    string
	queue chan Message
}

// Bus is an in-process Port.
//
// A single event loop goroutine owns the subscriber set; public methods talk
// to it through channels. Each subscriber has a bounded queue drained by its
// own goroutine, so a slow handler only loses its own messages.
type Bus struct {
	logger *slog.Logger
	buffer int

	subscribeCh   chan *subscriber
	unsubscribeCh chan *subscriber
	publishCh     chan envelope
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBus starts a bus with the given per-subscriber buffer.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bus{
		logger:        logger,
		buffer:        buffer,
		subscribeCh:   make(chan *subscriber),
		unsubscribeCh: make(chan *subscriber),
		publishCh:     make(chan envelope, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Bus) run() {
	defer close(b.stopped)

	subs := make(map[*subscriber]struct{})

	for {
		select {
		case <-b.stopCh:
			for s := range subs {
				close(s.queue)
			}
			return

		case s := <-b.subscribeCh:
			subs[s] = struct{}{}

		case s := <-b.unsubscribeCh:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.queue)
			}

		case env := <-b.publishCh:
			for s := range subs {
				if s.id == env.origin {
					continue
				}
				select {
				case s.queue <- env.msg:
				default:
					b.logger.Warn("broadcast: message dropped, subscriber queue full",
						slog.String("subscriber", s.id),
						slog.String("type", env.msg.Type))
				}
			}

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

// Close stops the event loop and ends every subscription.
func (b *Bus) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe implements Port.
func (b *Bus) Subscribe(id string, handler Handler) func() {
	s := &subscriber{id: id, queue: make(chan Message, b.buffer)}

	go func() {
		for msg := range s.queue {
			b.deliver(s.id, handler, msg)
		}
	}()

	if b.closed.Load() {
		close(s.queue)
		return func() {}
	}
	select {
	case b.subscribeCh <- s:
	case <-b.stopped:
		close(s.queue)
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if b.closed.Load() {
				return
			}
			select {
			case b.unsubscribeCh <- s:
			case <-b.stopped:
			}
		})
	}
}

func (b *Bus) deliver(id string, handler Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("broadcast: subscriber panicked",
				slog.String("subscriber", id),
				slog.Any("panic", r))
		}
	}()
	handler(msg)
}

// Publish implements Port. It is a no-op after Close.
func (b *Bus) Publish(origin string, msg Message) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- envelope{origin: origin, msg: msg}:
	case <-b.stopped:
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

var _ Port = (*Bus)(nil)

package wakeup

import (
	"log/slog"
	"sync"

	"github.com/heartmarshall/glossync/internal/domain"
)

const defaultBuffer = 16

// Broker fans messages out to subscribers. Publish never blocks; a subscriber
// with a full buffer misses the message.
type Broker struct {
	buffer int
	log    *slog.Logger

	mu   sync.Mutex
	subs map[int]chan domain.Message
	next int
}

// NewBroker creates a Broker whose subscribers buffer up to buffer messages.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		buffer: buffer,
		log:    logger.With("service", "broker"),
		subs:   make(map[int]chan domain.Message),
	}
}

// Subscribe returns a message channel and a cancel func that closes it.
func (b *Broker) Subscribe() (<-chan domain.Message, func()) {
	ch := make(chan domain.Message, b.buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers msg to every subscriber.
func (b *Broker) Publish(msg domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			b.log.Warn("subscriber buffer full, message dropped",
				slog.Int("subscriber", id), slog.String("type", string(msg.Type)))
		}
	}
}

// Subscribers returns the number of attached subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

package service

import (
	"sync"

	"github.com/MKhiriev/go-task-keeper/models"
)

// subscriberBuffer is the number of undelivered changes kept per subscriber.
// When it fills up the oldest change is dropped; subscribers only care about
// the latest value of a path.
const subscriberBuffer = 16

type broker struct {
	mu   sync.Mutex
	subs map[string]map[chan models.Change]struct{}
}

// NewBroker returns an in-memory [Broker].
func NewBroker() Broker {
	return &broker{subs: make(map[string]map[chan models.Change]struct{})}
}

func (b *broker) Subscribe(path string) (<-chan models.Change, func()) {
	ch := make(chan models.Change, subscriberBuffer)

	b.mu.Lock()
	if b.subs[path] == nil {
		b.subs[path] = make(map[chan models.Change]struct{})
	}
	b.subs[path][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[path], ch)
			if len(b.subs[path]) == 0 {
				delete(b.subs, path)
			}
			close(ch)
		})
	}
}

func (b *broker) Publish(change models.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[change.Path] {
		select {
		case ch <- change:
		default:
			// slow subscriber, drop the oldest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- change:
			default:
			}
		}
	}
}

package fluid

import "sync"

// Viewport is what device detection reports about the current screen.
type Viewport struct {
	Width       float64
	Height      float64
	DeviceClass string
}

// ViewportSource is implemented by the device detection collaborator.
// Subscribe returns function which removes the subscription.
type ViewportSource interface {
	Viewport() Viewport
	Subscribe(fn func(Viewport)) (unsubscribe func())
}

// Broadcaster is a minimal ViewportSource which hands every Set to its
// subscribers, in subscription order. Hosts without real device detection
// (command line, tests) use it directly.
type Broadcaster struct {
	mu     sync.Mutex
	vp     Viewport
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Viewport)
}

// NewBroadcaster creates source reporting initial viewport.
func NewBroadcaster(initial Viewport) *Broadcaster {
	return &Broadcaster{vp: initial}
}

// Viewport returns last set viewport.
func (b *Broadcaster) Viewport() Viewport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vp
}

// Subscribe registers fn.
func (b *Broadcaster) Subscribe(fn func(Viewport)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Set stores viewport and notifies subscribers synchronously.
func (b *Broadcaster) Set(vp Viewport) {
	b.mu.Lock()
	b.vp = vp
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(vp)
	}
}

// Subscribers returns number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

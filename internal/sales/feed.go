package sales

import "sync"

// Feed fans a change signal out to every subscriber. Signals coalesce: a
// slow subscriber sees at most one pending signal.
type Feed struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[chan struct{}]struct{})}
}

func (f *Feed) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
	return ch, cancel
}

func (f *Feed) Publish() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

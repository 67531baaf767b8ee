package store

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// observers is a small publish/subscribe list. Callbacks run in
// subscription order on the goroutine that performed the mutation.
type observers[T any] struct {
	mu   sync.Mutex
	next int
	subs []subscriber[T]
}

func (o *observers[T]) subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.next++
	id := o.next
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (o *observers[T]) notify(v T) {
	o.mu.Lock()
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

package lib

// Subscription wraps a producer goroutine that emits events into a channel
// and can be stopped with Unsubscribe. Err is closed when the producer
// returns, carrying the terminal error if any.
type Subscription struct {
	quit chan struct{}
	err  chan error
	ch   <-chan interface{}
}

func NewSubscription(producer func(quit <-chan struct{}) error, ch <-chan interface{}) *Subscription {
	s := &Subscription{
		quit: make(chan struct{}),
		err:  make(chan error, 1),
		ch:   ch,
	}

	go func() {
		defer close(s.err)
		if err := producer(s.quit); err != nil {
			s.err <- err
		}
	}()

	return s
}

func (s *Subscription) Events() <-chan interface{} {
	return s.ch
}

func (s *Subscription) Err() <-chan error {
	return s.err
}

func (s *Subscription) Unsubscribe() {
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
}

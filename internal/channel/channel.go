// Package channel provides generic channel wrappers that decouple the
// tick-driven engine from its consumers. The render tick must never block
// on a slow host, so senders expose a non-blocking TrySend alongside Send.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T)
	// TrySend delivers without blocking and reports whether the value
	// was accepted.
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}

// Buffered wraps a buffered Go channel. TrySend drops when the buffer
// is full.
type Buffered[T any] struct {
	ch chan T
}

// NewBuffered creates a buffered channel with the given capacity.
func NewBuffered[T any](size int) *Buffered[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

func (b *Buffered[T]) Send(v T) { b.ch <- v }

func (b *Buffered[T]) TrySend(v T) bool {
	select {
	case b.ch <- v:
		return true
	default:
		return false
	}
}

func (b *Buffered[T]) Receive() <-chan T { return b.ch }

// Len returns the number of values currently buffered.
func (b *Buffered[T]) Len() int { return len(b.ch) }

func (b *Buffered[T]) Close() { close(b.ch) }

// Unbuffered wraps an unbuffered Go channel, used in debug builds to
// surface backpressure immediately. TrySend only succeeds when a
// receiver is already waiting.
type Unbuffered[T any] struct {
	ch chan T
}

// NewUnbuffered creates an unbuffered channel.
func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

func (u *Unbuffered[T]) Send(v T) { u.ch <- v }

func (u *Unbuffered[T]) TrySend(v T) bool {
	select {
	case u.ch <- v:
		return true
	default:
		return false
	}
}

func (u *Unbuffered[T]) Receive() <-chan T { return u.ch }

// Len always returns 0, an unbuffered channel holds nothing.
func (u *Unbuffered[T]) Len() int { return 0 }

func (u *Unbuffered[T]) Close() { close(u.ch) }

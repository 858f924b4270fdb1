//go:build debug

package channel

// New creates a new channel. Debug builds return an unbuffered channel
// (ignoring size) so consumer stalls show up as deadlocks in tests.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}

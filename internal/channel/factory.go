//go:build !debug

package channel

// New creates a new channel with the given buffer size. Production builds
// buffer so the engine tick never waits on consumers.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}

// Package power asks the host operating system to power off.
package power

// Trigger initiates a machine shutdown. Implementations must tolerate
// being invoked more than once, possibly concurrently.
type Trigger interface {
	Shutdown() error
}

// Func adapts a plain function to the Trigger interface.
type Func func() error

func (f Func) Shutdown() error {
	return f()
}

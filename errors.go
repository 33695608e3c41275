package motorcan

import "errors"

var (
	// ErrConnectionClosed is returned by Send and Register after shutdown
	ErrConnectionClosed = errors.New("connection is closed")
	// ErrListenerStopped is returned by Next after the listener was stopped
	ErrListenerStopped = errors.New("listener has been stopped")
	// ErrTimeout is returned by NextTimeout when no message arrived in time
	ErrTimeout = errors.New("timed out waiting for message")
	// ErrNodeIdRange means the node id does not fit the device family
	ErrNodeIdRange = errors.New("node id out of range for device family")
	// ErrCommandRange means the command id does not fit the device family
	ErrCommandRange = errors.New("command id out of range for device family")
)

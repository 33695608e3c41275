// This package is a pure golang CAN driver for ODrive and MyActuator
// motor controllers. It owns the physical bus through a dedicated I/O
// goroutine and fans decoded, typed messages out to registered listeners.
package motorcan

package link

// Device defines the interface for energy monitor devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Records() <-chan Record
	Flush() error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

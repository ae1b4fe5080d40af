package link

// Error is a string-constant error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotConnected     = Error("not connected")
	ErrAlreadyConnected = Error("already connected")
)

package acquire

// Error is a string-constant error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrBufferFull = Error("sample buffer full")

// SampleBuffer holds one cycle of raw ADC counts: N voltage/current pairs and
// a single offset reading. Storage is allocated once.
type SampleBuffer struct {
	voltage []uint16
	current []uint16
	offset  uint16
	n       int // committed pairs
}

// NewSampleBuffer allocates a buffer for capacity pairs.
func NewSampleBuffer(capacity int) *SampleBuffer {
	return &SampleBuffer{
		voltage: make([]uint16, capacity),
		current: make([]uint16, capacity),
	}
}

// Reset rewinds the pair index. Old contents are left in place and get
// overwritten by the next cycle.
func (b *SampleBuffer) Reset() {
	b.n = 0
	b.offset = 0
}

// PutVoltage stores the voltage half of the pair at the current index.
func (b *SampleBuffer) PutVoltage(v uint16) error {
	if b.n >= len(b.voltage) {
		return ErrBufferFull
	}
	b.voltage[b.n] = v
	return nil
}

// PutCurrent stores the current half of the pair and commits the pair.
// full reports whether this pair filled the buffer.
func (b *SampleBuffer) PutCurrent(c uint16) (full bool, err error) {
	if b.n >= len(b.current) {
		return true, ErrBufferFull
	}
	b.current[b.n] = c
	b.n++
	return b.n == len(b.current), nil
}

func (b *SampleBuffer) PutOffset(v uint16) {
	b.offset = v
}

// Len returns the number of committed pairs.
func (b *SampleBuffer) Len() int { return b.n }

// Cap returns the pair capacity.
func (b *SampleBuffer) Cap() int { return len(b.voltage) }

func (b *SampleBuffer) Full() bool { return b.n == len(b.voltage) }

// Voltage returns the committed voltage samples. The slice aliases the buffer.
func (b *SampleBuffer) Voltage() []uint16 { return b.voltage[:b.n] }

// Current returns the committed current samples. The slice aliases the buffer.
func (b *SampleBuffer) Current() []uint16 { return b.current[:b.n] }

func (b *SampleBuffer) Offset() uint16 { return b.offset }

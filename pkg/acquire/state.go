package acquire

// State is the sequencer state.
type State uint8

const (
	Idle            State = iota // Waiting for an armed zero-cross edge
	SamplingVoltage              // Conversion running on the voltage channel
	SamplingCurrent              // Conversion running on the current channel
	SamplingOffset               // Buffer full, single offset conversion running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SamplingVoltage:
		return "sampling-voltage"
	case SamplingCurrent:
		return "sampling-current"
	case SamplingOffset:
		return "sampling-offset"
	}
	return "unknown"
}

// Channel is an ADC input channel.
type Channel uint8

const (
	ChannelVoltage Channel = 0
	ChannelCurrent Channel = 1
	ChannelOffset  Channel = 2
)

// EventKind identifies what woke the sequencer.
type EventKind uint8

const (
	EventEdge               EventKind = iota // Zero-cross edge that won the arming gate
	EventConversionComplete                  // ADC finished a conversion
)

// Event is the input of Transition. Pairs is the number of voltage/current
// pairs already committed to the buffer before this event.
type Event struct {
	Kind     EventKind
	Pairs    int
	Capacity int
}

// Op is a side effect requested by Transition.
type Op uint8

const (
	CmdResetBuffer Op = iota
	CmdStoreVoltage
	CmdStoreCurrent
	CmdStoreOffset
	CmdStartConversion
	CmdEnableTrigger
	CmdDisableTrigger
	CmdSignalComplete
)

// Command is one side effect. Channel is only meaningful for CmdStartConversion.
type Command struct {
	Op      Op
	Channel Channel
}

// Transition is the pure sequencer step. It appends the side effects of the
// step to dst (reusing its capacity) and returns the next state.
//
// Store commands refer to the conversion result carried alongside the event;
// they always precede the command that starts the next conversion.
// CmdSignalComplete is always last: once it runs the buffer belongs to the
// consumer.
func Transition(dst []Command, s State, ev Event) (State, []Command) {
	dst = dst[:0]

	switch ev.Kind {
	case EventEdge:
		if s != Idle {
			return s, dst
		}
		dst = append(dst,
			Command{Op: CmdResetBuffer},
			Command{Op: CmdEnableTrigger},
			Command{Op: CmdStartConversion, Channel: ChannelVoltage},
		)
		return SamplingVoltage, dst

	case EventConversionComplete:
		switch s {
		case SamplingVoltage:
			dst = append(dst,
				Command{Op: CmdStoreVoltage},
				Command{Op: CmdStartConversion, Channel: ChannelCurrent},
			)
			return SamplingCurrent, dst

		case SamplingCurrent:
			dst = append(dst, Command{Op: CmdStoreCurrent})
			if ev.Pairs+1 < ev.Capacity {
				dst = append(dst, Command{Op: CmdStartConversion, Channel: ChannelVoltage})
				return SamplingVoltage, dst
			}
			dst = append(dst, Command{Op: CmdStartConversion, Channel: ChannelOffset})
			return SamplingOffset, dst

		case SamplingOffset:
			dst = append(dst,
				Command{Op: CmdStoreOffset},
				Command{Op: CmdDisableTrigger},
				Command{Op: CmdSignalComplete},
			)
			return Idle, dst
		}
	}

	// Stray conversion while idle
	return s, dst
}

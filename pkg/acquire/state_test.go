package acquire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		event    Event
		want     State
		wantCmds []Command
	}{
		{
			name:  "edge arms idle sequencer",
			state: Idle,
			event: Event{Kind: EventEdge, Capacity: 4},
			want:  SamplingVoltage,
			wantCmds: []Command{
				{Op: CmdResetBuffer},
				{Op: CmdEnableTrigger},
				{Op: CmdStartConversion, Channel: ChannelVoltage},
			},
		},
		{
			name:     "edge while sampling is ignored",
			state:    SamplingCurrent,
			event:    Event{Kind: EventEdge, Pairs: 2, Capacity: 4},
			want:     SamplingCurrent,
			wantCmds: []Command{},
		},
		{
			name:  "voltage then current",
			state: SamplingVoltage,
			event: Event{Kind: EventConversionComplete, Pairs: 0, Capacity: 4},
			want:  SamplingCurrent,
			wantCmds: []Command{
				{Op: CmdStoreVoltage},
				{Op: CmdStartConversion, Channel: ChannelCurrent},
			},
		},
		{
			name:  "current with room left goes back to voltage",
			state: SamplingCurrent,
			event: Event{Kind: EventConversionComplete, Pairs: 2, Capacity: 4},
			want:  SamplingVoltage,
			wantCmds: []Command{
				{Op: CmdStoreCurrent},
				{Op: CmdStartConversion, Channel: ChannelVoltage},
			},
		},
		{
			name:  "current filling the buffer moves to offset",
			state: SamplingCurrent,
			event: Event{Kind: EventConversionComplete, Pairs: 3, Capacity: 4},
			want:  SamplingOffset,
			wantCmds: []Command{
				{Op: CmdStoreCurrent},
				{Op: CmdStartConversion, Channel: ChannelOffset},
			},
		},
		{
			name:  "offset completes the cycle",
			state: SamplingOffset,
			event: Event{Kind: EventConversionComplete, Pairs: 4, Capacity: 4},
			want:  Idle,
			wantCmds: []Command{
				{Op: CmdStoreOffset},
				{Op: CmdDisableTrigger},
				{Op: CmdSignalComplete},
			},
		},
		{
			name:     "stray conversion while idle",
			state:    Idle,
			event:    Event{Kind: EventConversionComplete, Capacity: 4},
			want:     Idle,
			wantCmds: []Command{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cmds := Transition(make([]Command, 0, 4), tt.state, tt.event)
			assert.Equal(t, tt.want, got)
			if diff := cmp.Diff(tt.wantCmds, cmds); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransition_ReusesDestination(t *testing.T) {
	dst := make([]Command, 0, 4)
	_, cmds := Transition(dst, Idle, Event{Kind: EventEdge, Capacity: 3})
	assert.Equal(t, cap(dst), cap(cmds))
	assert.Same(t, &dst[:1][0], &cmds[0])
}

func TestTransition_ZeroCapacityGoesStraightToOffset(t *testing.T) {
	// Capacity 0 is a configuration error; the state machine still behaves
	// deterministically.
	got, _ := Transition(nil, SamplingCurrent, Event{Kind: EventConversionComplete, Pairs: 0, Capacity: 0})
	assert.Equal(t, SamplingOffset, got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "sampling-voltage", SamplingVoltage.String())
	assert.Equal(t, "sampling-current", SamplingCurrent.String())
	assert.Equal(t, "sampling-offset", SamplingOffset.String())
	assert.Equal(t, "unknown", State(42).String())
}

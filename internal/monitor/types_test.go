package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"REST", StateRest, false},
		{"index", StateIndex, false},
		{" Middle ", StateMiddle, false},
		{"movement", StateMovement, false},
		{"UNCERTAIN", StateUncertain, false},
		{"", StateNone, true},
		{"THUMB", StateNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "REST, INDEX, MIDDLE, MOVEMENT, UNCERTAIN")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "waiting", StateNone.String())
	assert.Equal(t, "INDEX", StateIndex.String())
}

func TestState_Description(t *testing.T) {
	for _, st := range append(States, StateNone) {
		assert.NotEmpty(t, st.Description(), st)
	}
	assert.Equal(t, "movement detected", StateMovement.Description())
}

func TestLinkState_String(t *testing.T) {
	tests := []struct {
		state  LinkState
		expect string
	}{
		{LinkConnecting, "connecting"},
		{LinkUp, "live"},
		{LinkFailed, "failed"},
		{LinkLost, "lost"},
		{LinkEnded, "ended"},
		{LinkState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.state.String())
		})
	}
}

func TestLinkState_Broken(t *testing.T) {
	assert.True(t, LinkFailed.Broken())
	assert.True(t, LinkLost.Broken())
	assert.False(t, LinkUp.Broken())
	assert.False(t, LinkConnecting.Broken())
	assert.False(t, LinkEnded.Broken())
}

package wizard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MyGens/internal/calc/sizing"
)

func TestVisualFlow(t *testing.T) {
	s := Start()
	assert.Equal(t, StepMethod, s.Step)

	s, err := s.ChooseMethod(Visual)
	require.NoError(t, err)
	assert.Equal(t, StepType, s.Step)

	s, err = s.ChooseType(sizing.Industrial)
	require.NoError(t, err)
	assert.Equal(t, State{Step: StepLoads, Method: Visual, InstallationType: sizing.Industrial}, s)
}

func TestEngineeringSkipsTypeStep(t *testing.T) {
	s, err := Start().ChooseMethod(Engineering)
	require.NoError(t, err)
	assert.Equal(t, StepLoads, s.Step)
	assert.Equal(t, sizing.Residential, s.InstallationType)

	s, err = s.ChooseType(sizing.Industrial)
	require.NoError(t, err)
	assert.Equal(t, sizing.Industrial, s.InstallationType)
}

func TestOutOfOrder(t *testing.T) {
	_, err := Start().ChooseType(sizing.Residential)
	assert.ErrorIs(t, err, ErrOutOfOrder)

	s, _ := Start().ChooseMethod(Visual)
	_, err = s.ChooseMethod(Engineering)
	assert.ErrorIs(t, err, ErrOutOfOrder)

	_, err = Start().ChooseMethod("magic")
	assert.ErrorIs(t, err, ErrUnknown)
	_, err = s.ChooseType("boat")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestPrev(t *testing.T) {
	s, _ := Start().ChooseMethod(Visual)
	s, _ = s.ChooseType(sizing.Residential)

	s = s.Prev()
	assert.Equal(t, State{Step: StepType, Method: Visual}, s)
	s = s.Prev()
	assert.Equal(t, Start(), s)
	s = s.Prev()
	assert.Equal(t, Start(), s)
}

func TestQueryRoundTrip(t *testing.T) {
	s, _ := Start().ChooseMethod(Visual)
	s, _ = s.ChooseType(sizing.Industrial)
	assert.Equal(t, s, FromQuery(s.Query()))

	mid, _ := Start().ChooseMethod(Visual)
	assert.Equal(t, mid, FromQuery(mid.Query()))
	assert.Equal(t, Start(), FromQuery(Start().Query()))
}

func TestFromQueryInvalid(t *testing.T) {
	for _, raw := range []string{"type=industrial", "method=magic", "method=visual&type=boat"} {
		q, err := url.ParseQuery(raw)
		require.NoError(t, err)
		assert.Equal(t, Start(), FromQuery(q), raw)
	}
}

func TestEngineeringPrevReachesTypeStep(t *testing.T) {
	s, err := Start().ChooseMethod(Engineering)
	require.NoError(t, err)

	back := FromQuery(s.Prev().Query())
	assert.Equal(t, State{Step: StepType, Method: Engineering}, back)

	s, err = back.ChooseType(sizing.Industrial)
	require.NoError(t, err)
	assert.Equal(t, State{Step: StepLoads, Method: Engineering, InstallationType: sizing.Industrial}, s)
	assert.Equal(t, s, FromQuery(s.Query()))

	assert.Equal(t, Start(), FromQuery(back.Prev().Query()))
}

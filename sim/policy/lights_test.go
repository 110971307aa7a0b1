package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulage-sim/haulage-sim/sim"
)

func TestGreedyLights_AlwaysZero(t *testing.T) {
	g := GreedyLights{}
	assert.Equal(t, 0.0, g.GreenTime(0, sim.GreenRed, 10))
	assert.Equal(t, 0.0, g.GreenTime(0, sim.YellowRed, 10))
	assert.Equal(t, 0.0, g.GreenTime(0, sim.RedYellow, 10))
}

func TestTimedLights_SchedulesGreensOnly(t *testing.T) {
	// GIVEN a timed policy with a 60 unit green
	l, err := NewTimedLights(60)
	require.NoError(t, err)

	// THEN green phases get the duration, yellows are never extended
	assert.Equal(t, 60.0, l.GreenTime(0, sim.GreenRed, 10))
	assert.Equal(t, 60.0, l.GreenTime(0, sim.RedGreen, 10))
	assert.Equal(t, 0.0, l.GreenTime(0, sim.YellowRed, 10))
	assert.Equal(t, 0.0, l.GreenTime(0, sim.RedYellow, 10))
}

func TestNewTimedLights_RejectsNonPositiveGreen(t *testing.T) {
	_, err := NewTimedLights(0)
	assert.Error(t, err)
	_, err = NewTimedLights(-5)
	assert.Error(t, err)
}

func TestNewLightPolicy_ByName(t *testing.T) {
	p, err := NewLightPolicy("greedy", 0)
	require.NoError(t, err)
	assert.IsType(t, GreedyLights{}, p)

	p, err = NewLightPolicy("timed", 45)
	require.NoError(t, err)
	assert.IsType(t, &TimedLights{}, p)

	_, err = NewLightPolicy("adaptive", 0)
	assert.Error(t, err)
}

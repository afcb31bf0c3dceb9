package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowWithLabels(strike float64, ceLabel, peLabel string) Row {
	return Row{
		Strike: strike,
		CE:     SideStats{SideSignal: SideSignal{Label: ceLabel}},
		PE:     SideStats{SideSignal: SideSignal{Label: peLabel}},
	}
}

func TestBuildTargetProjection_NearestLevels(t *testing.T) {
	rows := []Row{
		rowWithLabels(24200, LabelMixed, LabelStrongShortBuildup),
		rowWithLabels(24400, LabelMixed, LabelShortCovering),
		rowWithLabels(24500, LabelMixed, LabelMixed),
		rowWithLabels(24600, LabelStrongShortBuildup, LabelMixed),
		rowWithLabels(24800, LabelShortCovering, LabelMixed),
	}

	projection, ok := BuildTargetProjection(rows, 24512.35)

	require.True(t, ok)
	assert.Equal(t, 24400.0, projection.Support, "nearest eligible strike below spot")
	assert.Equal(t, 24600.0, projection.Resistance, "nearest eligible strike above spot")
	assert.Equal(t, ProjectedRange{Lower: 24400, Upper: 24600}, projection.Range)
}

func TestBuildTargetProjection_InvariantHolds(t *testing.T) {
	rows := []Row{
		rowWithLabels(24300, LabelStrongShortBuildup, LabelStrongShortBuildup),
		rowWithLabels(24700, LabelStrongShortBuildup, LabelStrongShortBuildup),
	}
	spot := 24500.0

	projection, ok := BuildTargetProjection(rows, spot)

	require.True(t, ok)
	assert.Less(t, projection.Support, spot)
	assert.Greater(t, projection.Resistance, spot)
}

func TestBuildTargetProjection_UnavailableWithoutEligibleRows(t *testing.T) {
	rows := []Row{
		rowWithLabels(24400, LabelMixed, LabelNoise),
		rowWithLabels(24600, LabelLongUnwinding, LabelStrongLongBuildup),
	}

	projection, ok := BuildTargetProjection(rows, 24500)

	assert.False(t, ok)
	assert.Nil(t, projection, "unavailable, never defaulted")
}

func TestBuildTargetProjection_RequiresBothLevels(t *testing.T) {
	// A support with no resistance above spot is not a band.
	rows := []Row{
		rowWithLabels(24400, LabelMixed, LabelStrongShortBuildup),
	}

	_, ok := BuildTargetProjection(rows, 24500)

	assert.False(t, ok)
}

func TestBuildTargetProjection_StrikeAtSpotIgnored(t *testing.T) {
	rows := []Row{
		rowWithLabels(24500, LabelStrongShortBuildup, LabelStrongShortBuildup),
	}

	_, ok := BuildTargetProjection(rows, 24500)

	assert.False(t, ok)
}

func TestBuildTargetProjection_EmptyRows(t *testing.T) {
	_, ok := BuildTargetProjection(nil, 24500)

	assert.False(t, ok)
}

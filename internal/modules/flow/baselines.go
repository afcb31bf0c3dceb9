package flow

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// VolumeBaseline holds the once-per-snapshot volume reference values for one
// option side.
type VolumeBaseline struct {
	Average float64
	// Top20Threshold is the volume at the 20th-percentile rank when
	// volumes are sorted descending: sorted[max(0, floor(n*0.2)-1)].
	// The rank choice is unusual for small n (it selects the maximum when
	// n <= 5) but is kept for compatibility with the existing signal set.
	Top20Threshold float64
}

func computeBaseline(volumes []float64) VolumeBaseline {
	if len(volumes) == 0 {
		return VolumeBaseline{}
	}

	sorted := make([]float64, len(volumes))
	copy(sorted, volumes)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	idx := int(float64(len(sorted))*0.2) - 1
	if idx < 0 {
		idx = 0
	}

	return VolumeBaseline{
		Average:        stat.Mean(volumes, nil),
		Top20Threshold: sorted[idx],
	}
}

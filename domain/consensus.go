package domain

import "sort"

// ConsensusBand is the tolerated deviation around the median, as a
// fraction of the median itself.
const ConsensusBand = 0.10

type ConsensusResult struct {
	Reached bool
	Value   float64
}

// DetectConsensus decides whether the submitted predictions agree.
//
// The rule: sort values ascending, take the element at index n/2 as the
// median (a fixed index, never an interpolated average), and accept iff
// every value deviates from it by at most ConsensusBand * median. The
// returned value is the median itself, which keeps the agreed price
// robust to outliers instead of smoothing them in.
//
// Fewer than two predictions can never agree.
func DetectConsensus(predictions map[string]Prediction) ConsensusResult {
	if len(predictions) < 2 {
		return ConsensusResult{}
	}
	values := make([]float64, 0, len(predictions))
	for _, p := range predictions {
		values = append(values, p.Value)
	}
	sort.Float64s(values)

	median := values[len(values)/2]
	threshold := median * ConsensusBand
	if threshold < 0 {
		threshold = -threshold
	}
	for _, v := range values {
		deviation := v - median
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation > threshold {
			return ConsensusResult{}
		}
	}
	return ConsensusResult{Reached: true, Value: median}
}

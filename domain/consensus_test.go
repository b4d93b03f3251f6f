package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func predictions(values ...float64) map[string]Prediction {
	out := make(map[string]Prediction, len(values))
	for i, v := range values {
		out[string(rune('a'+i))] = Prediction{Value: v}
	}
	return out
}

func TestDetectConsensus_AgreementWithinBand(t *testing.T) {
	req := require.New(t)

	// [95, 100, 105]: median 100, every value within 10
	result := DetectConsensus(predictions(100, 105, 95))
	req.True(result.Reached)
	req.Equal(100.0, result.Value)
}

func TestDetectConsensus_OutlierBreaksAgreement(t *testing.T) {
	req := require.New(t)

	// 130 deviates from the median 100 by more than 10
	result := DetectConsensus(predictions(100, 105, 130))
	req.False(result.Reached)
	req.Zero(result.Value)
}

func TestDetectConsensus_TwoValues_MedianIsUpper(t *testing.T) {
	req := require.New(t)

	// Sorted [100, 200], the median index n/2 picks 200; 100 deviates
	// by 100 > 20, so no agreement
	result := DetectConsensus(predictions(100, 200))
	req.False(result.Reached)

	// Sorted [100, 108]: median 108, both within 10.8
	result = DetectConsensus(predictions(100, 108))
	req.True(result.Reached)
	req.Equal(108.0, result.Value)
}

func TestDetectConsensus_FewerThanTwo_NeverAgrees(t *testing.T) {
	req := require.New(t)

	req.False(DetectConsensus(predictions()).Reached)
	req.False(DetectConsensus(predictions(100)).Reached)
}

func TestDetectConsensus_IdenticalValues(t *testing.T) {
	req := require.New(t)

	result := DetectConsensus(predictions(42, 42, 42, 42))
	req.True(result.Reached)
	req.Equal(42.0, result.Value)
}

func TestDetectConsensus_NegativeValues(t *testing.T) {
	req := require.New(t)

	// Threshold uses the absolute band even for a negative median
	result := DetectConsensus(predictions(-100, -105, -95))
	req.True(result.Reached)
	req.Equal(-100.0, result.Value)
}

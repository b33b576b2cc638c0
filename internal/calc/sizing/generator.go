package sizing

import "math"

const (
	runningMargin        = 1.25
	residentialPeakRatio = 0.92
	industrialPeakRatio  = 0.90
	residentialFloorKW   = 5.0
	industrialFloorKW    = 0.5

	// MaxRecommendedKW caps the result so arbitrarily many devices cannot
	// overflow the int conversion.
	MaxRecommendedKW = math.MaxInt32
)

// RecommendedSize returns the generator capacity in whole kW. The larger of
// the continuous-duty size (80% loading) and the surge-covering size wins.
//
// An industrial installation with no base load gets no generator even when
// the motor alone would produce a peak. This mirrors the published sizing
// rule and is pending product review.
func RecommendedSize(runningLoad, peakLoad float64, industrial bool, baseLoad float64) int {
	if runningLoad == 0 {
		return 0
	}
	if industrial && baseLoad == 0 {
		return 0
	}

	peakRatio := residentialPeakRatio
	if industrial {
		peakRatio = industrialPeakRatio
	}
	recommended := math.Max(runningLoad*runningMargin, peakLoad*peakRatio)

	if !industrial && recommended < residentialFloorKW {
		recommended = residentialFloorKW
	}
	if industrial && recommended < industrialFloorKW && runningLoad > 0 {
		recommended = industrialFloorKW
	}

	if recommended >= MaxRecommendedKW {
		return MaxRecommendedKW
	}

	// drop float noise first: 2.4*1.25 is 3.0000000000000004 and must stay 3 kW
	return int(math.Ceil(round(recommended, 9)))
}

package earnings

import (
	"math"

	"clipbounty/services/rate"
)

// Result of evaluating a post against a rate definition.
//
// Applied is false when no usable rate was given; Earned then carries the
// previous amount through unchanged.
type Result struct {
	Earned  float64
	Changed bool
	Applied bool
}

// Round4 rounds to four decimal places, half away from zero.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Calculate evaluates accrued earnings for a post.
//
// Flat rates pay on views gained over the baseline, clamped at zero so a
// platform-side count correction can never produce negative pay.
// Proportional rates pay on the absolute view count.
func Calculate(def *rate.Definition, startingViews, currentViews int64, previousEarned float64) Result {
	if def == nil {
		return Result{Earned: previousEarned}
	}

	var earned float64
	switch def.Kind {
	case rate.KindFlat:
		if def.PerViews <= 0 {
			return Result{Earned: previousEarned}
		}
		gained := currentViews - startingViews
		if gained < 0 {
			gained = 0
		}
		earned = Round4(float64(gained) / float64(def.PerViews) * def.AmountUSD)
	case rate.KindProportional:
		earned = Round4(float64(currentViews) / 1000 * def.AmountPer1000)
	default:
		return Result{Earned: previousEarned}
	}

	return Result{
		Earned:  earned,
		Changed: earned != previousEarned,
		Applied: true,
	}
}

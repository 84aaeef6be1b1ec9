package astro

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// MaxEstimateDrift is how far provider times may stray from the local
// estimate before a warning is logged.
const MaxEstimateDrift = 15 * time.Minute

// Estimate computes sunrise and sunset for the UTC calendar date of day.
// ok is false when the sun does not rise or set (polar day or night).
func Estimate(lat, lng float64, day time.Time) (rise, set time.Time, ok bool) {
	day = day.UTC()
	rise, set = sunrise.SunriseSunset(lat, lng, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return rise.UTC(), set.UTC(), true
}

// Drift is the difference between a stored record and the local estimate
type Drift struct {
	Sunrise time.Duration
	Sunset  time.Duration
}

// Exceeds reports whether either difference is larger than limit
func (d Drift) Exceeds(limit time.Duration) bool {
	return abs(d.Sunrise) > limit || abs(d.Sunset) > limit
}

// CompareWithEstimate returns how far rec is from the closest estimate. The
// provider's day can straddle UTC dates, so neighbouring days are checked too.
func CompareWithEstimate(rec Record, lat, lng float64) (Drift, bool) {
	day, err := time.ParseInLocation(DateLayout, rec.Date, time.UTC)
	if err != nil {
		return Drift{}, false
	}

	recRise := time.Unix(rec.Sunrise, 0)
	recSet := time.Unix(rec.Sunset, 0)

	var best Drift
	found := false
	for _, offset := range []int{-1, 0, 1} {
		rise, set, ok := Estimate(lat, lng, day.AddDate(0, 0, offset))
		if !ok {
			continue
		}
		d := Drift{Sunrise: recRise.Sub(rise), Sunset: recSet.Sub(set)}
		if !found || abs(d.Sunrise) < abs(best.Sunrise) {
			best = d
			found = true
		}
	}
	return best, found
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

package astro

import "time"

// RenderLocal formats rec in UTC and in loc. DateLocal is midnight UTC of the
// record date expressed in loc, so zones west of UTC show the previous day.
func RenderLocal(rec Record, loc *time.Location) (LocalView, error) {
	if rec.Date == "" {
		return LocalView{}, &ValidationError{Reason: "No data found to convert"}
	}
	if loc == nil {
		loc = time.UTC
	}

	day, err := time.ParseInLocation(DateLayout, rec.Date, time.UTC)
	if err != nil {
		return LocalView{}, &ValidationError{Field: "date", Reason: err.Error()}
	}
	sunrise := time.Unix(rec.Sunrise, 0).UTC()
	sunset := time.Unix(rec.Sunset, 0).UTC()

	return LocalView{
		ID:           rec.ID,
		Date:         day.Format(DateLayout),
		Sunrise:      sunrise.Format(TimeLayout),
		Sunset:       sunset.Format(TimeLayout),
		DayLength:    rec.DayLength,
		DateLocal:    day.In(loc).Format(DateLayout),
		SunriseLocal: sunrise.In(loc).Format(TimeLayout),
		SunsetLocal:  sunset.In(loc).Format(TimeLayout),
	}, nil
}

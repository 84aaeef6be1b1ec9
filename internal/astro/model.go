package astro

import "coopcontrol/internal/storage"

// DateLayout is the calendar date format used for keys and views
const DateLayout = "2006-01-02"

// TimeLayout is the clock time format used in rendered views
const TimeLayout = "15:04:05-0700"

// Record is one day of sunrise/sunset data, keyed by the UTC date of sunrise
type Record struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Date      string `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Sunrise   int64  `gorm:"not null" json:"sunrise"`
	Sunset    int64  `gorm:"not null" json:"sunset"`
	DayLength int    `gorm:"not null" json:"day_length"`
	storage.Timestamps
}

// TableName pins the table name
func (Record) TableName() string {
	return "astronomical"
}

// RawResult is the "results" object returned by the provider with
// formatted=0. Times are RFC 3339 strings and DayLength is in seconds.
type RawResult struct {
	Sunrise                   string `json:"sunrise"`
	Sunset                    string `json:"sunset"`
	SolarNoon                 string `json:"solar_noon"`
	DayLength                 int64  `json:"day_length"`
	CivilTwilightBegin        string `json:"civil_twilight_begin"`
	CivilTwilightEnd          string `json:"civil_twilight_end"`
	NauticalTwilightBegin     string `json:"nautical_twilight_begin"`
	NauticalTwilightEnd       string `json:"nautical_twilight_end"`
	AstronomicalTwilightBegin string `json:"astronomical_twilight_begin"`
	AstronomicalTwilightEnd   string `json:"astronomical_twilight_end"`
}

// LocalView is a record rendered in UTC and in a display timezone
type LocalView struct {
	ID           uint   `json:"id"`
	Date         string `json:"date"`
	Sunrise      string `json:"sunrise"`
	Sunset       string `json:"sunset"`
	DayLength    int    `json:"day_length"`
	DateLocal    string `json:"date_local"`
	SunriseLocal string `json:"sunrise_local"`
	SunsetLocal  string `json:"sunset_local"`
}

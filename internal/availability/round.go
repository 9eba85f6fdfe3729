package availability

import (
	"math"
	"time"
)

// RoundTo5 rounds an instant to the nearest 5-minute boundary and zeroes
// seconds and sub-second components. A rounded minute of 60 rolls forward
// into the next hour instead of producing an invalid minute.
func RoundTo5(t time.Time) time.Time {
	rounded := int(math.Round(float64(t.Minute())/5)) * 5
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return base.Add(time.Duration(rounded) * time.Minute)
}

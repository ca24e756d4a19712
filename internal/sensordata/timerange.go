package sensordata

import "time"

const timestampLayout = "2006-01-02T15:04:05Z"

// TimeRange converts a period label into an ISO-8601 UTC window ending now.
// "today" starts at midnight UTC; an unrecognized label falls back to the
// one-day window.
func TimeRange(period string, now time.Time) (string, string) {
	now = now.UTC()

	var from time.Time
	switch period {
	case "day":
		from = now.AddDate(0, 0, -1)
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, 0, -30)
	case "year":
		from = now.AddDate(0, 0, -365)
	case "today":
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	default:
		from = now.AddDate(0, 0, -1)
	}

	return from.Format(timestampLayout), now.Format(timestampLayout)
}

package utils

import "time"

// NowRFC3339 returns the current UTC time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// TodayRFC3339 returns midnight UTC of the current day in RFC3339 format.
// Stored timestamps are RFC3339 UTC, so the boundary compares lexicographically.
func TodayRFC3339() string {
	return time.Now().UTC().Truncate(24 * time.Hour).Format(time.RFC3339)
}

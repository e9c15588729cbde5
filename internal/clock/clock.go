// Package clock maps real play time onto the in-game calendar.
package clock

import (
	"fmt"
	"time"
)

const (
	// RealMsPerVirtualDay is how many real milliseconds of play make one in-game day.
	RealMsPerVirtualDay int64 = 180_000
	// TickMs is the amount of play time added by one clock tick.
	TickMs int64 = 1_000
	// ReleaseIntervalMs is the play time between two news releases.
	ReleaseIntervalMs int64 = 30_000
)

// StartDate is day zero of the in-game calendar.
var StartDate = time.Date(2026, time.February, 26, 0, 0, 0, 0, time.UTC)

var weekdays = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// ElapsedDays returns the number of whole in-game days covered by playedMs.
func ElapsedDays(playedMs int64) int64 {
	if playedMs <= 0 {
		return 0
	}
	return playedMs / RealMsPerVirtualDay
}

// DateAt returns the in-game date for the given amount of play time.
func DateAt(playedMs int64) time.Time {
	return StartDate.AddDate(0, 0, int(ElapsedDays(playedMs)))
}

// Label formats the in-game date as "MM.DD (요일)".
func Label(playedMs int64) string {
	d := DateAt(playedMs)
	return fmt.Sprintf("%02d.%02d (%s)", int(d.Month()), d.Day(), weekdays[d.Weekday()])
}

// DisplayDate strips the weekday suffix from a label.
func DisplayDate(label string) string {
	if len(label) < 5 {
		return label
	}
	return label[:5]
}

// StartDisplayDate is the display date stamped on the initial feed.
func StartDisplayDate() string {
	return DisplayDate(Label(0))
}

// Package services provides the business logic between the HTTP layer and
// the record store: reminder alarm scheduling, transaction bookkeeping and
// the per-snapshot overview computation.
//
// This file implements the reminder due-date policy. A reminder is defined
// by a day-of-month alone; the next occurrence is the first time that day
// comes up strictly in the future, at a fixed wall-clock hour.
package services

import "time"

// Alarms fire at 09:00 local time on the due day.
const alarmHour = 9

// A reminder counts as near-due when it falls within this many days after
// today, same month only.
const nearDueWindowDays = 3

type Urgency string

const (
	UrgencyNear   Urgency = "near"
	UrgencyNormal Urgency = "normal"
)

// NextOccurrence computes the next time dayOfMonth comes up at 09:00 local,
// strictly after now, together with the delay until then.
//
// The candidate is built in now's month; if it is at or before now it is
// advanced by exactly one calendar month, never searched further. Days that
// overflow the month (31 in a 30-day month) normalize into the following
// month, which is how the platform date arithmetic this policy mirrors
// behaves. The returned delay is always positive.
func NextOccurrence(dayOfMonth int, now time.Time) (time.Time, time.Duration) {
	candidate := time.Date(now.Year(), now.Month(), dayOfMonth, alarmHour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate, candidate.Sub(now)
}

// ClassifyUrgency flags a reminder as near-due when its day is today or up
// to three days ahead within the current month.
//
// Known limitation: there is no month-rollover credit. A bill due on the 2nd
// is not flagged on the 30th even though it is temporally close; the signal
// is a same-month heatmap only and is kept that way deliberately.
func ClassifyUrgency(dayOfMonth, today int) Urgency {
	diff := dayOfMonth - today
	if diff >= 0 && diff <= nearDueWindowDays {
		return UrgencyNear
	}
	return UrgencyNormal
}

// Package models holds the records persisted by the repositories.
package models

import "time"

// DateLayout is the canonical calendar-date format used in forms, JSON and SQL
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, kept in DateLayout form.
type Date string

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time parses the date as midnight UTC
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

// IsZero reports an unset date
func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) String() string {
	return string(d)
}

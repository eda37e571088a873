package dateutil

import (
	"math"
	"time"
)

// FilingDeadlineMonth and FilingDeadlineDay give the individual return deadline
// in the calendar year after the tax year.
const (
	FilingDeadlineMonth = time.April
	FilingDeadlineDay   = 15
)

// MinTaxYear is the earliest tax year accepted for filing.
const MinTaxYear = 2020

// DueDate returns the filing deadline for a tax year (April 15 of the following year, UTC).
func DueDate(taxYear int) time.Time {
	return time.Date(taxYear+1, FilingDeadlineMonth, FilingDeadlineDay, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of days from now until due, rounded up.
// A due date earlier today yields 0; past due dates yield negative values.
func DaysUntil(due, now time.Time) int {
	hours := due.Sub(now).Hours()
	return int(math.Ceil(hours / 24))
}

// IsOverdue reports whether due has passed by at least one full day.
func IsOverdue(due, now time.Time) bool {
	return DaysUntil(due, now) < 0
}

// ValidTaxYear reports whether year is in [MinTaxYear, now.Year()].
func ValidTaxYear(year int, now time.Time) bool {
	return year >= MinTaxYear && year <= now.Year()
}

// EndOfYear returns the last instant of the given year in UTC.
func EndOfYear(year int) time.Time {
	return time.Date(year, 12, 31, 23, 59, 59, 999999999, time.UTC)
}

// Age calculates the age at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

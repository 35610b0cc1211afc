package registration

import (
	"fmt"
	"strings"
	"time"
)

// BirthDateLayout is the format of the HTML date input.
const BirthDateLayout = "2006-01-02"

// ParseBirthDate reads a YYYY-MM-DD date as a calendar day in loc.
func ParseBirthDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(BirthDateLayout, strings.TrimSpace(value), loc)
}

// Age returns the full years elapsed between birth and now: the year
// difference, minus one when now's month and day come before the birthday.
func Age(birth, now time.Time) int {
	birth = birth.In(now.Location())
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeLabel renders an age for display, or "" when there is nothing
// meaningful to show.
func AgeLabel(age int) string {
	if age <= 0 {
		return ""
	}
	return fmt.Sprintf("%d años", age)
}

// DeriveAgeLabel computes the displayed age for a raw birth date field.
// Empty or unreadable dates yield "".
func DeriveAgeLabel(birthDate string, now time.Time) string {
	if strings.TrimSpace(birthDate) == "" {
		return ""
	}
	birth, err := ParseBirthDate(birthDate, now.Location())
	if err != nil {
		return ""
	}
	return AgeLabel(Age(birth, now))
}

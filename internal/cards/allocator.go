// Package cards implements the library-card application lifecycle: intake
// with card-number allocation, status transitions with an audit trail, and
// materialization of student records on approval.
package cards

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// fieldCodes maps a field of study to its card-number prefix. Unlisted
// fields fall back to "XX".
var fieldCodes = map[string]string{
	"Computer Science": "CS",
	"Commerce":         "COM",
	"Humanities":       "HM",
	"Pre-Engineering":  "PE",
	"Pre-Medical":      "PM",
}

const fieldCodeFallback = "XX"

var nonDigits = regexp.MustCompile(`[^\d]`)

// FieldCode returns the card-number prefix for a field of study.
func FieldCode(field string) string {
	if code, ok := fieldCodes[field]; ok {
		return code
	}
	return fieldCodeFallback
}

// classDigits strips non-digit characters from the class label ("12th" ->
// "12"). A label with no digits at all is kept verbatim.
func classDigits(class string) string {
	digits := nonDigits.ReplaceAllString(class, "")
	if digits == "" {
		return class
	}
	return digits
}

// BaseCardNumber composes the unsuffixed card number from the applicant's
// field, roll number, and class.
func BaseCardNumber(field, rollNo, class string) string {
	return fmt.Sprintf("%s-%s-%s", FieldCode(field), rollNo, classDigits(class))
}

// Suffixed appends the collision counter to a base card number.
func Suffixed(base string, counter int) string {
	return fmt.Sprintf("%s-%d", base, counter)
}

// NewStudentID draws a random display identifier of the form GCMN-000000.
// It is not a uniqueness key; the card number is.
func NewStudentID() string {
	return fmt.Sprintf("GCMN-%06d", rand.Intn(1_000_000))
}

// IssueDates returns the date-only issue and expiry strings for a card
// issued now. Cards are valid for one year.
func IssueDates(now time.Time) (issueDate, validThrough string) {
	const layout = "2006-01-02"
	return now.Format(layout), now.Add(365 * 24 * time.Hour).Format(layout)
}

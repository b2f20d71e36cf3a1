package reconciliation

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// QuarterCode is the three-letter calendar quarter code of a tag.
type QuarterCode string

const (
	QuarterJFM QuarterCode = "JFM"
	QuarterAMJ QuarterCode = "AMJ"
	QuarterJAS QuarterCode = "JAS"
	QuarterOND QuarterCode = "OND"
)

const unknownQuarterRank = 4

var quarterTagPattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{4}$`)

// Rank returns the position of the code within a year. Unknown codes rank after OND.
func (c QuarterCode) Rank() int {
	switch c {
	case QuarterJFM:
		return 0
	case QuarterAMJ:
		return 1
	case QuarterJAS:
		return 2
	case QuarterOND:
		return 3
	default:
		return unknownQuarterRank
	}
}

// EndMonth returns the final month of the quarter.
func (c QuarterCode) EndMonth() (time.Month, bool) {
	switch c {
	case QuarterJFM:
		return time.March, true
	case QuarterAMJ:
		return time.June, true
	case QuarterJAS:
		return time.September, true
	case QuarterOND:
		return time.December, true
	default:
		return 0, false
	}
}

// QuarterTag identifies one calendar quarter, e.g. JAS-2024.
type QuarterTag struct {
	Code QuarterCode
	Year int
}

// IsQuarterTag reports whether raw has the CODE-YYYY shape.
func IsQuarterTag(raw string) bool {
	return quarterTagPattern.MatchString(raw)
}

// ParseQuarterTag parses a CODE-YYYY tag. Any three uppercase letters are accepted as a code.
func ParseQuarterTag(raw string) (QuarterTag, error) {
	if !IsQuarterTag(raw) {
		return QuarterTag{}, fmt.Errorf("%w: %q", ErrInvalidQuarterTag, raw)
	}
	year, err := strconv.Atoi(raw[4:])
	if err != nil {
		return QuarterTag{}, fmt.Errorf("%w: %q", ErrInvalidQuarterTag, raw)
	}
	return QuarterTag{Code: QuarterCode(raw[:3]), Year: year}, nil
}

// MustParseQuarterTag is ParseQuarterTag for literals.
func MustParseQuarterTag(raw string) QuarterTag {
	tag, err := ParseQuarterTag(raw)
	if err != nil {
		panic(err)
	}
	return tag
}

// String returns the CODE-YYYY form.
func (t QuarterTag) String() string {
	return fmt.Sprintf("%s-%04d", t.Code, t.Year)
}

// Before orders tags by year, then code rank, then code.
func (t QuarterTag) Before(other QuarterTag) bool {
	if t.Year != other.Year {
		return t.Year < other.Year
	}
	if t.Code.Rank() != other.Code.Rank() {
		return t.Code.Rank() < other.Code.Rank()
	}
	return t.Code < other.Code
}

// EndDate returns midnight at the start of the last day of the quarter in loc.
func (t QuarterTag) EndDate(loc *time.Location) (time.Time, bool) {
	month, ok := t.Code.EndMonth()
	if !ok {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	// day 0 of the following month is the last day of month
	return time.Date(t.Year, month+1, 0, 0, 0, 0, 0, loc), true
}

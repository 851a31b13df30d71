package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateKey is returned when a string is not a valid year-month-day key.
var ErrInvalidDateKey = errors.New("invalid date key")

// DateKey identifies a single calendar day as "year-month-day" where the
// month is 1-based and no component is zero padded (e.g. "2024-2-29").
type DateKey string

// KeyOf builds the canonical key for a day. Out-of-range values are
// normalized the same way time.Date normalizes them.
func KeyOf(year int, month time.Month, day int) DateKey {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	return DateKey(fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day()))
}

// KeyForTime returns the key of the local calendar day containing t.
func KeyForTime(t time.Time) DateKey {
	return DateKey(fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day()))
}

// ParseDateKey validates s and returns its canonical form. Zero-padded
// input such as "2024-02-09" is accepted and canonicalized to "2024-2-9".
func ParseDateKey(s string) (DateKey, error) {
	year, month, day, err := splitKey(s)
	if err != nil {
		return "", err
	}
	return DateKey(fmt.Sprintf("%d-%d-%d", year, int(month), day)), nil
}

func splitKey(s string) (int, time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
		}
		nums[i] = n
	}

	year, month, day := nums[0], time.Month(nums[1]), nums[2]
	if month < time.January || month > time.December {
		return 0, 0, 0, fmt.Errorf("%w: month out of range in %q", ErrInvalidDateKey, s)
	}
	if day < 1 || day > DaysIn(year, month) {
		return 0, 0, 0, fmt.Errorf("%w: day out of range in %q", ErrInvalidDateKey, s)
	}
	return year, month, day, nil
}

// Date splits the key into its components.
func (k DateKey) Date() (year int, month time.Month, day int, err error) {
	return splitKey(string(k))
}

// Time returns midnight of the key's day in loc.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	year, month, day, err := k.Date()
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
}

func (k DateKey) Valid() bool {
	_, _, _, err := k.Date()
	return err == nil
}

func (k DateKey) String() string {
	return string(k)
}

// DaysIn returns the number of days in the given month, honoring leap years.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves (year, month) by n months.
func AddMonths(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// MonthLabel formats a month the way the header shows it, e.g. "February 2024".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}

// YearOptions lists the years offered by the year picker: base-span .. base+span.
func YearOptions(base, span int) []int {
	if span < 0 {
		span = 0
	}
	years := make([]int, 0, 2*span+1)
	for y := base - span; y <= base+span; y++ {
		years = append(years, y)
	}
	return years
}

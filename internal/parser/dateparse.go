package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cwarden/monthcal/internal/calendar"
)

var ErrUnrecognized = errors.New("unrecognized date")

// DateParser turns typed dates ("tomorrow", "next fri", "2024-02-29",
// "feb 29 2024") into calendar days relative to a reference time.
type DateParser struct {
	now      time.Time
	location *time.Location
}

func NewDateParser() *DateParser {
	return &DateParser{
		now:      time.Now(),
		location: time.Local,
	}
}

func (p *DateParser) SetNow(now time.Time) {
	p.now = now
}

var (
	weekdayRe   = regexp.MustCompile(`^(next|this)\s+(mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday)$`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)$`)
	fromNowRe   = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+from\s+(now|today)$`)
	isoRe       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dateRe      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})$`)
	monthNameRe = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:,?\s+(\d{4}))?$`)
)

// Parse reads the whole input as a single date and returns midnight of
// that day.
func (p *DateParser) Parse(input string) (time.Time, error) {
	lower := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if lower == "" {
		return time.Time{}, fmt.Errorf("empty input")
	}

	if date, ok := p.parseRelativeDate(lower); ok {
		return date, nil
	}
	date, ok, err := p.parseAbsoluteDate(lower)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return date, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, input)
}

// ParseKey is Parse returning the day's DateKey.
func (p *DateParser) ParseKey(input string) (calendar.DateKey, error) {
	date, err := p.Parse(input)
	if err != nil {
		return "", err
	}
	return calendar.KeyForTime(date), nil
}

func (p *DateParser) parseRelativeDate(lower string) (time.Time, bool) {
	switch lower {
	case "today", "now":
		return p.today(), true
	case "tomorrow", "tmrw":
		return p.today().AddDate(0, 0, 1), true
	case "yesterday":
		return p.today().AddDate(0, 0, -1), true
	}

	if matches := weekdayRe.FindStringSubmatch(lower); matches != nil {
		isNext := matches[1] == "next"
		return p.findNextWeekday(parseWeekday(matches[2]), isNext), true
	}

	if matches := inRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.offset(n, matches[2]), true
	}

	if matches := fromNowRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.offset(n, matches[2]), true
	}

	return time.Time{}, false
}

func (p *DateParser) offset(n int, unit string) time.Time {
	date := p.today()
	switch {
	case strings.HasPrefix(unit, "day"):
		date = date.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		date = date.AddDate(0, 0, n*7)
	case strings.HasPrefix(unit, "month"):
		date = date.AddDate(0, n, 0)
	}
	return date
}

func (p *DateParser) parseAbsoluteDate(lower string) (time.Time, bool, error) {
	var year, month, day int

	switch {
	case isoRe.MatchString(lower):
		// YYYY-MM-DD, also accepts unpadded date keys
		m := isoRe.FindStringSubmatch(lower)
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])

	case dateRe.MatchString(lower):
		// MM/DD/YYYY or MM-DD-YYYY
		m := dateRe.FindStringSubmatch(lower)
		month, _ = strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])

	case shortDateRe.MatchString(lower):
		// MM/DD (assume current year)
		m := shortDateRe.FindStringSubmatch(lower)
		month, _ = strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		year = p.now.Year()

	case monthNameRe.MatchString(lower):
		// Month DD, YYYY or Month DD
		m := monthNameRe.FindStringSubmatch(lower)
		month = int(parseMonth(m[1]))
		day, _ = strconv.Atoi(m[2])
		year = p.now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}

	default:
		return time.Time{}, false, nil
	}

	if month < 1 || month > 12 || day < 1 || day > calendar.DaysIn(year, time.Month(month)) {
		return time.Time{}, false, fmt.Errorf("%w: no such day %d-%d-%d", ErrUnrecognized, year, month, day)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.location), true, nil
}

func parseWeekday(s string) time.Weekday {
	switch s {
	case "mon", "monday":
		return time.Monday
	case "tue", "tuesday":
		return time.Tuesday
	case "wed", "wednesday":
		return time.Wednesday
	case "thu", "thursday":
		return time.Thursday
	case "fri", "friday":
		return time.Friday
	case "sat", "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func parseMonth(s string) time.Month {
	switch s {
	case "feb", "february":
		return time.February
	case "mar", "march":
		return time.March
	case "apr", "april":
		return time.April
	case "may":
		return time.May
	case "jun", "june":
		return time.June
	case "jul", "july":
		return time.July
	case "aug", "august":
		return time.August
	case "sep", "sept", "september":
		return time.September
	case "oct", "october":
		return time.October
	case "nov", "november":
		return time.November
	case "dec", "december":
		return time.December
	default:
		return time.January
	}
}

// findNextWeekday returns the next target weekday after today. "next"
// skips a further week.
func (p *DateParser) findNextWeekday(target time.Weekday, skipThisWeek bool) time.Time {
	date := p.today()
	daysUntilTarget := int(target - date.Weekday())

	if daysUntilTarget <= 0 || skipThisWeek {
		daysUntilTarget += 7
	}

	return date.AddDate(0, 0, daysUntilTarget)
}

func (p *DateParser) today() time.Time {
	y, m, d := p.now.In(p.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location)
}

package common

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

var (
	// ErrUnparseableTime is returned when input is neither a date nor a duration
	ErrUnparseableTime = errors.New("could not discern a date from input")

	// ErrPastTime is returned when input resolves to a moment before now
	ErrPastTime = errors.New("time must be in the future")
)

// calendarPrefix matches the leading year and month units, which have no fixed length
var calendarPrefix = regexp.MustCompile(`^(?:([0-9])(?:years?|y))?(?:([0-9]{1,2})(?:months?|mo))?`)

// unitNames rewrites long unit names into the short forms str2duration parses.
// Longer names come first so "minutes" is not consumed as "minute" + "s".
var unitNames = strings.NewReplacer(
	"weeks", "w", "week", "w",
	"days", "d", "day", "d",
	"hours", "h", "hour", "h", "hrs", "h", "hr", "h",
	"minutes", "m", "minute", "m", "mins", "m", "min", "m",
	"seconds", "s", "second", "s", "secs", "s", "sec", "s",
)

var dateLayouts = []string{
	"01/02/2006",
	"01/02/06",
	"02/01/2006",
	"Jan022006",
	"Jan0206",
	"January022006",
	"January0206",
}

// ParseTime resolves user input such as "2h30m", "4 months and 2 days" or
// "12/25/2026" into an absolute UTC time after now
func ParseTime(now time.Time, input string) (time.Time, error) {
	now = now.UTC()
	arg := strings.ToLower(strings.TrimSpace(input))
	arg = strings.ReplaceAll(arg, " and ", "")
	arg = strings.ReplaceAll(arg, " ", "")
	if arg == "" {
		return time.Time{}, ErrUnparseableTime
	}

	parsed, ok := parseDate(input)
	if !ok {
		var err error
		parsed, err = parseRelative(now, arg)
		if err != nil {
			return time.Time{}, err
		}
	}

	if parsed.Before(now) {
		return time.Time{}, ErrPastTime
	}
	return parsed, nil
}

func parseDate(input string) (time.Time, bool) {
	arg := strings.NewReplacer("-", "/", ",", "", " ", "").Replace(strings.TrimSpace(input))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, arg); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseRelative(now time.Time, arg string) (time.Time, error) {
	match := calendarPrefix.FindStringSubmatch(arg)
	years, _ := strconv.Atoi(match[1])
	months, _ := strconv.Atoi(match[2])
	rest := arg[len(match[0]):]

	if rest == "" {
		if match[0] == "" {
			return time.Time{}, ErrUnparseableTime
		}
		return now.AddDate(years, months, 0), nil
	}

	d, err := str2duration.ParseDuration(unitNames.Replace(rest))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnparseableTime, err)
	}
	return now.AddDate(years, months, 0).Add(d), nil
}

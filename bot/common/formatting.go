package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Plural expands "(s)" and "(is/are)" markers in text depending on count
func Plural(text string, count int64) string {
	if count == 1 {
		return strings.NewReplacer("(s)", "", "(is/are)", "is").Replace(text)
	}
	return strings.NewReplacer("(s)", "s", "(is/are)", "are").Replace(text)
}

// HumanJoin joins items as "a, b and c" using final as the last separator
func HumanJoin(items []string, final string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s %s %s", items[0], final, items[1])
	default:
		return strings.Join(items[:len(items)-1], ", ") + " " + final + " " + items[len(items)-1]
	}
}

// HumanTimedelta describes the calendar distance between t and source using at
// most accuracy units, e.g. "2 days and 3 hours" or "5 minutes ago"
func HumanTimedelta(t, source time.Time, accuracy int) string {
	t = t.UTC().Truncate(time.Second)
	source = source.UTC().Truncate(time.Second)

	suffix := ""
	from, to := source, t
	if t.Before(source) {
		from, to = t, source
		suffix = " ago"
	}

	years, months, days, hours, minutes, seconds := calendarDiff(from, to)
	weeks := days / 7
	days %= 7

	units := []struct {
		count int
		name  string
	}{
		{years, "year"},
		{months, "month"},
		{weeks, "week"},
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
		{seconds, "second"},
	}

	var parts []string
	for _, unit := range units {
		if unit.count <= 0 {
			continue
		}
		parts = append(parts, Plural(fmt.Sprintf("%d %s(s)", unit.count, unit.name), int64(unit.count)))
	}
	if accuracy > 0 && len(parts) > accuracy {
		parts = parts[:accuracy]
	}

	if len(parts) == 0 {
		return "now"
	}
	return HumanJoin(parts, "and") + suffix
}

// calendarDiff splits to-from into calendar units, borrowing like a
// written subtraction. from must not be after to.
func calendarDiff(from, to time.Time) (years, months, days, hours, minutes, seconds int) {
	years = to.Year() - from.Year()
	months = int(to.Month()) - int(from.Month())
	days = to.Day() - from.Day()
	hours = to.Hour() - from.Hour()
	minutes = to.Minute() - from.Minute()
	seconds = to.Second() - from.Second()

	if seconds < 0 {
		seconds += 60
		minutes--
	}
	if minutes < 0 {
		minutes += 60
		hours--
	}
	if hours < 0 {
		hours += 24
		days--
	}
	if days < 0 {
		// Days in the month preceding to's month
		days += time.Date(to.Year(), to.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
		months--
	}
	if months < 0 {
		months += 12
		years--
	}
	return
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDiscordMessageLink creates a jump link to a message. guildID is "@me" for DMs.
func FormatDiscordMessageLink(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// FormatUserMention returns a Discord mention string for a user
func FormatUserMention(userID string) string {
	return "<@" + userID + ">"
}

// FormatCount formats an integer with thousands separators
func FormatCount(n int64) string {
	str := strconv.FormatInt(n, 10)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}

	if negative {
		return "-" + result.String()
	}
	return result.String()
}

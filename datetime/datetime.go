// Package datetime implements the calendar date and RFC 3339 date-time
// values of GunnyScript.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KimNorgaard/go-gunnyscript/errors"
)

// Date is a calendar date without a time zone. Year may be zero or negative.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a date of the form YEAR-MONTH-DAY. A leading '-' makes the
// year negative and leading zeros are allowed in every field.
func ParseDate(s string) (Date, error) {
	body := s
	neg := false
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}
	fields := strings.SplitN(body, "-", 3)
	if fields[0] == "" {
		return Date{}, errors.New(errors.MissingYearInDate, strconv.Quote(s))
	}
	if len(fields) < 2 || fields[1] == "" {
		return Date{}, errors.New(errors.MissingMonthInDate, strconv.Quote(s))
	}
	if len(fields) < 3 || fields[2] == "" {
		return Date{}, errors.New(errors.MissingDayInDate, strconv.Quote(s))
	}

	y, err := strconv.ParseUint(trimZeros(fields[0]), 10, 31)
	if err != nil {
		return Date{}, errors.Wrap(errors.InvalidDateYear, strconv.Quote(s), err)
	}
	year := int(y)
	if neg {
		year = -year
	}
	month, err := strconv.ParseUint(trimZeros(fields[1]), 10, 8)
	if err != nil {
		return Date{}, errors.Wrap(errors.InvalidDateMonth, strconv.Quote(s), err)
	}
	day, err := strconv.ParseUint(trimZeros(fields[2]), 10, 8)
	if err != nil {
		return Date{}, errors.Wrap(errors.InvalidDateDay, strconv.Quote(s), err)
	}

	d := Date{Year: year, Month: time.Month(month), Day: int(day)}
	if !d.IsValid() {
		return Date{}, errors.New(errors.InvalidDate, strconv.Quote(s))
	}
	return d, nil
}

// trimZeros strips leading zeros, keeping a final digit so "00" stays "0".
func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" && s != "" {
		return "0"
	}
	return t
}

// IsValid reports whether d names a real day of the proleptic Gregorian
// calendar.
func (d Date) IsValid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

// Time returns midnight UTC at the start of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, day := t.Date()
	return Date{Year: y, Month: m, Day: day}
}

// String renders d as YYYY-MM-DD.
func (d Date) String() string {
	if d.Year < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -d.Year, int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateTime is a date and wall-clock time with a fixed UTC offset.
type DateTime struct {
	Date
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	// OffsetMinutes is the offset east of UTC.
	OffsetMinutes int
}

// ParseDateTime parses an RFC 3339 timestamp such as 2020-01-02T12:54:00Z or
// 2020-01-02T12:54:00.5-05:00.
func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return DateTime{}, errors.Wrap(errors.InvalidDateTime, strconv.Quote(s), err)
	}
	return FromTime(t), nil
}

// FromTime converts t, keeping its wall clock and UTC offset.
func FromTime(t time.Time) DateTime {
	_, offset := t.Zone()
	return DateTime{
		Date:          DateOf(t),
		Hour:          t.Hour(),
		Minute:        t.Minute(),
		Second:        t.Second(),
		Nanosecond:    t.Nanosecond(),
		OffsetMinutes: offset / 60,
	}
}

// Time returns dt as a time.Time in a fixed zone. A zero offset maps to UTC.
func (dt DateTime) Time() time.Time {
	loc := time.UTC
	if dt.OffsetMinutes != 0 {
		loc = time.FixedZone("", dt.OffsetMinutes*60)
	}
	return time.Date(dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second, dt.Nanosecond, loc)
}

// String renders dt in RFC 3339 form with the shortest fractional seconds.
func (dt DateTime) String() string {
	return dt.Time().Format(time.RFC3339Nano)
}

// MarshalText implements encoding.TextMarshaler.
func (dt DateTime) MarshalText() ([]byte, error) {
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DateTime) UnmarshalText(b []byte) error {
	parsed, err := ParseDateTime(string(b))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

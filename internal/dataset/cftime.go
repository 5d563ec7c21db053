package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrTimeUnits is returned when a time variable's units cannot be decoded
var ErrTimeUnits = errors.New("unsupported CF time units")

var referenceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

const secondsPerDay = 24 * 60 * 60

// TimeUnits is a parsed CF "<unit> since <reference>" string
type TimeUnits struct {
	Step      time.Duration
	Reference time.Time
}

// ParseTimeUnits parses CF time units such as "days since 1801-01-01 00:00:00"
func ParseTimeUnits(units string) (TimeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, fmt.Errorf("%w: %q", ErrTimeUnits, units)
	}

	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "days", "day", "d":
		step = 24 * time.Hour
	case "hours", "hour", "h":
		step = time.Hour
	case "minutes", "minute", "min":
		step = time.Minute
	case "seconds", "second", "s", "sec":
		step = time.Second
	default:
		return TimeUnits{}, fmt.Errorf("%w: %q", ErrTimeUnits, units)
	}

	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	for _, layout := range referenceLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return TimeUnits{Step: step, Reference: t.UTC()}, nil
		}
	}
	return TimeUnits{}, fmt.Errorf("%w: bad reference date in %q", ErrTimeUnits, units)
}

// Decode converts an offset expressed in these units to a UTC timestamp. Whole
// days go through AddDate so references centuries back do not overflow a Duration.
func (u TimeUnits) Decode(offset float64) time.Time {
	whole, frac := math.Modf(offset)
	secs := int64(whole) * int64(u.Step/time.Second)
	days, rem := secs/secondsPerDay, secs%secondsPerDay

	t := u.Reference.AddDate(0, 0, int(days)).Add(time.Duration(rem) * time.Second)
	return t.Add(time.Duration(math.Round(frac * float64(u.Step))))
}

// Encode converts a timestamp to an offset in these units
func (u TimeUnits) Encode(t time.Time) float64 {
	secs := float64(t.Unix() - u.Reference.Unix())
	nanos := float64(t.Nanosecond() - u.Reference.Nanosecond())
	return (secs + nanos/1e9) / u.Step.Seconds()
}

// Times decodes a CF time variable into UTC timestamps. Only the standard
// (proleptic) Gregorian calendars are supported.
func (ds *Dataset) Times(name string) ([]time.Time, error) {
	units, err := ds.VarAttrString(name, "units")
	if err != nil {
		return nil, err
	}

	if cal, err := ds.VarAttrString(name, "calendar"); err == nil {
		switch strings.ToLower(cal) {
		case "standard", "gregorian", "proleptic_gregorian":
		default:
			return nil, fmt.Errorf("%w: calendar %q", ErrTimeUnits, cal)
		}
	}

	tu, err := ParseTimeUnits(units)
	if err != nil {
		return nil, err
	}

	offsets, err := ds.Float64s(name)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(offsets))
	for i, off := range offsets {
		times[i] = tu.Decode(off)
	}
	return times, nil
}

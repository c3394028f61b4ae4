package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeOfDay is a wall-clock time without a date, serialized as
// "HH:MM:SS" with a six digit fraction when sub-second precision is present.
type TimeOfDay struct {
	offset time.Duration
}

func NewTimeOfDay(hour, minute, second, nanosecond int) TimeOfDay {
	return TimeOfDay{offset: time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second +
		time.Duration(nanosecond)}
}

var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?$`)

// ParseTimeOfDay accepts HH:MM, HH:MM:SS and HH:MM:SS.ffffff.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeOfDay{}, errors.Errorf("invalid time of day %q", s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}
	nanos := 0
	if m[4] != "" {
		frac := m[4] + strings.Repeat("0", 9-len(m[4]))
		nanos, _ = strconv.Atoi(frac)
	}

	if hour > 23 || minute > 59 || second > 59 {
		return TimeOfDay{}, errors.Errorf("time of day %q out of range", s)
	}

	return NewTimeOfDay(hour, minute, second, nanos), nil
}

func (t TimeOfDay) Hour() int   { return int(t.offset / time.Hour) }
func (t TimeOfDay) Minute() int { return int(t.offset % time.Hour / time.Minute) }
func (t TimeOfDay) Second() int { return int(t.offset % time.Minute / time.Second) }

// On places the time of day on the date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location()).Add(t.offset)
}

func (t TimeOfDay) String() string {
	base := fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	if micros := int(t.offset % time.Second / time.Microsecond); micros != 0 {
		return fmt.Sprintf("%s.%06d", base, micros)
	}
	return base
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Duration is a time span serialized as an ISO 8601 duration such as
// "P1DT2H30M" or "PT0.5S". Input also accepts a number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var (
	isoDurationPattern   = regexp.MustCompile(`^(-)?P(?:(\d+(?:\.\d+)?)W)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	clockDurationPattern = regexp.MustCompile(`^(-)?(?:(\d+) days?,? )?(\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)$`)
)

// ParseDuration parses ISO 8601 ("P3DT12H") or clock ("1 day, 02:00:00")
// notation.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)

	if m := isoDurationPattern.FindStringSubmatch(s); m != nil && s != "P" && !strings.HasSuffix(s, "T") {
		units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
		var total float64
		for i, unit := range units {
			if m[i+2] == "" {
				continue
			}
			n, _ := strconv.ParseFloat(m[i+2], 64)
			total += n * float64(unit)
		}
		if m[1] == "-" {
			total = -total
		}
		return Duration(total), nil
	}

	if m := clockDurationPattern.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(orZero(m[2]))
		hours, _ := strconv.Atoi(m[3])
		minutes, _ := strconv.Atoi(m[4])
		seconds, _ := strconv.ParseFloat(m[5], 64)
		total := float64(days)*float64(24*time.Hour) +
			float64(hours)*float64(time.Hour) +
			float64(minutes)*float64(time.Minute) +
			seconds*float64(time.Second)
		if m[1] == "-" {
			total = -total
		}
		return Duration(total), nil
	}

	return 0, errors.Errorf("invalid duration %q", s)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (d Duration) String() string {
	v := time.Duration(d)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	days := v / (24 * time.Hour)
	v -= days * 24 * time.Hour
	hours := v / time.Hour
	v -= hours * time.Hour
	minutes := v / time.Minute
	v -= minutes * time.Minute
	seconds := v.Seconds()

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("P")
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hours == 0 && minutes == 0 && seconds == 0 {
		if days == 0 {
			b.WriteString("T0S")
		}
		return b.String()
	}
	b.WriteString("T")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 {
		b.WriteString(strconv.FormatFloat(roundMicros(seconds), 'f', -1, 64))
		b.WriteString("S")
	}
	return b.String()
}

func roundMicros(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

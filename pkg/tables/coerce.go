package tables

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/soundprediction/scholia/pkg/types"
)

var dateLayouts = []string{
	types.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	types.DateTimeLayout,
	"2006-01-02 15:04:05",
}

// maxExcelSerial is 9999-12-31 in spreadsheet serial form.
const maxExcelSerial = 2958465

// ParseDate coerces a cell into a UTC midnight date. Accepted forms: YYYY-MM-DD strings (with an
// optional time part), time.Time values and spreadsheet serial numbers.
func ParseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return truncateDate(x), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateDate(t), nil
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialToDate(f)
		}
		return time.Time{}, fmt.Errorf("%w: date %q", types.ErrInvalidValue, x)
	case float64:
		return serialToDate(x)
	case float32:
		return serialToDate(float64(x))
	case int:
		return serialToDate(float64(x))
	case int64:
		return serialToDate(float64(x))
	case nil:
		return time.Time{}, types.ErrMissingField
	}
	return time.Time{}, fmt.Errorf("%w: date cell of type %T", types.ErrInvalidValue, v)
}

// ParseClock coerces a cell into a time-of-day offset from midnight. Accepted forms: HH:MM and
// HH:MM:SS strings, time.Time values (date part ignored), time.Duration values and spreadsheet
// fractional-day numbers.
func ParseClock(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case time.Time:
		return clockOf(x), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range clockLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return clockOf(t), nil
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fractionToClock(f)
		}
		return 0, fmt.Errorf("%w: time %q", types.ErrInvalidValue, x)
	case float64:
		return fractionToClock(x)
	case float32:
		return fractionToClock(float64(x))
	case nil:
		return 0, types.ErrMissingField
	}
	return 0, fmt.Errorf("%w: time cell of type %T", types.ErrInvalidValue, v)
}

func serialToDate(serial float64) (time.Time, error) {
	if serial <= 0 || serial > maxExcelSerial {
		return time.Time{}, fmt.Errorf("%w: date serial %v out of range", types.ErrInvalidValue, serial)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date serial %v: %v", types.ErrInvalidValue, serial, err)
	}
	return truncateDate(t), nil
}

func fractionToClock(f float64) (time.Duration, error) {
	if f < 0 {
		return 0, fmt.Errorf("%w: negative time %v", types.ErrInvalidValue, f)
	}
	_, frac := math.Modf(f)
	seconds := math.Round(frac * 24 * 60 * 60)
	return time.Duration(seconds) * time.Second, nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.Format(types.DateLayout)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

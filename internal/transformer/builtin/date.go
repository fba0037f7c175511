package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"campaignetl/pkg/records"
)

// contactYear is the fixed year of every last_contact_date.
const contactYear = "2022"

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
	"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
	"january": "01", "february": "02", "march": "03", "april": "04", "june": "06",
	"july": "07", "august": "08", "september": "09", "october": "10",
	"november": "11", "december": "12",
}

// MonthNumber maps a month cell to two digits: English month names (short or
// long, any case) by table, numbers zero-padded, anything else "01".
func MonthNumber(v records.Value) string {
	if v.IsNull() {
		return "01"
	}
	s := strings.ToLower(strings.TrimSpace(v.S))
	if mm, ok := monthNumbers[s]; ok {
		return mm
	}
	if mm, ok := padNumber(s); ok {
		return mm
	}
	return "01"
}

// DayNumber zero-pads a day cell to two digits. A missing or non-numeric day
// becomes "01".
func DayNumber(v records.Value) string {
	if v.IsNull() {
		return "01"
	}
	if dd, ok := padNumber(strings.TrimSpace(v.S)); ok {
		return dd
	}
	return "01"
}

// ContactDate composes "2022-MM-DD" from day and month cells.
func ContactDate(day, month records.Value) string {
	return contactYear + "-" + MonthNumber(month) + "-" + DayNumber(day)
}

// padNumber accepts integers and integral-looking floats ("5", "5.0",
// "5.7" truncates to 5) in 0..99 and returns them zero-padded to width 2.
// Values outside 0..99 are rejected.
func padNumber(s string) (string, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		if f >= 100 || f <= -1 {
			return "", false
		}
		n = int(f)
	}
	if n < 0 || n > 99 {
		return "", false
	}
	return fmt.Sprintf("%02d", n), true
}

package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minBirthYear = 1899

var (
	brDate       = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	isoDate      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	looseBrDate  = regexp.MustCompile(`^(\d{1,2})[^\d]?(\d{1,2})[^\d]?(\d{4})$`)
	monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

func isLeapYear(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

func daysInMonth(y, m int) int {
	if m == 2 && isLeapYear(y) {
		return 29
	}
	return monthLengths[m-1]
}

// ParseBR parses a strict dd/mm/yyyy string into a UTC midnight time. It
// fails for impossible calendar dates and for years before 1899.
func ParseBR(s string) (time.Time, bool) {
	m := brDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	if y < minBirthYear || mo < 1 || mo > 12 {
		return time.Time{}, false
	}
	if d < 1 || d > daysInMonth(y, mo) {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
}

// DateToISO formats t as yyyy-mm-dd.
func DateToISO(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ISOToBR turns yyyy-mm-dd into dd/mm/yyyy. Anything else yields "".
func ISOToBR(iso string) string {
	m := isoDate.FindStringSubmatch(iso)
	if m == nil {
		return ""
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%02d/%02d/%d", d, mo, y)
}

// BRToISO converts a display date to its storage form.
func BRToISO(s string) (string, bool) {
	t, ok := ParseBR(s)
	if !ok {
		return "", false
	}
	return DateToISO(t), true
}

// BirthDate validates a dd/mm/yyyy birth date against today's calendar day.
func BirthDate(s string, today time.Time) error {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return fail(CodeMissing, "Informe a data de nascimento.")
	}
	if !brDate.MatchString(raw) {
		return fail(CodeBadFormat, "Use o formato dd/mm/aaaa.")
	}
	d, ok := ParseBR(raw)
	if !ok {
		return fail(CodeNotARealDate, "Data de nascimento inválida.")
	}
	todayOnly := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !d.Before(todayOnly) {
		return fail(CodeNotInPast, "A data de nascimento deve ser anterior a hoje.")
	}
	return nil
}

// MaskBirthDate keeps up to 8 digits and inserts slashes after the day and
// the month as the user types.
func MaskBirthDate(raw string) string {
	digits := OnlyDigits(raw)
	if len(digits) > 8 {
		digits = digits[:8]
	}
	switch {
	case len(digits) > 4:
		return digits[:2] + "/" + digits[2:4] + "/" + digits[4:]
	case len(digits) > 2:
		return digits[:2] + "/" + digits[2:]
	default:
		return digits
	}
}

// NormalizeBirthDate zero-pads day and month of a loosely typed date
// ("1/6/1990", "1-6-1990") on blur. Unrecognized input is returned trimmed.
func NormalizeBirthDate(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return v
	}
	m := looseBrDate.FindStringSubmatch(strings.Join(strings.Fields(v), ""))
	if m == nil {
		return v
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d/%02d/%s", d, mo, m[3])
}

// ISODate checks a storage-form date: strict yyyy-mm-dd naming a real day
// no earlier than 1899.
func ISODate(s string) error {
	br := ISOToBR(s)
	if br == "" {
		return fail(CodeBadFormat, "Use o formato aaaa-mm-dd.")
	}
	if _, ok := ParseBR(br); !ok {
		return fail(CodeNotARealDate, "Data de nascimento inválida.")
	}
	return nil
}

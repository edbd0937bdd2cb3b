package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})(?:[/\-](\d{2,4}))?\b`)

// weekday names in Monday-first order, matching time.Weekday via (idx+1)%7.
var weekdayNames = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

// ParseDate resolves colloquial Spanish date phrases and numeric dates to an
// ISO YYYY-MM-DD string. Supported forms: ISO dates, dd/mm[/yyyy] (also with
// dashes), "hoy", "manana", "pasado manana", and weekday references such as
// "proximo sabado" or "el viernes" (always the next occurrence). Returns
// ok=false when nothing matches; callers drop the due date in that case.
func ParseDate(text string, today time.Time) (string, bool) {
	t := Normalize(text)
	today = truncateToDay(today)

	if strings.Contains(t, "pasado manana") {
		return today.AddDate(0, 0, 2).Format("2006-01-02"), true
	}
	if strings.Contains(t, "manana") {
		return today.AddDate(0, 0, 1).Format("2006-01-02"), true
	}
	if strings.Contains(t, "hoy") {
		return today.Format("2006-01-02"), true
	}

	if iso, err := time.Parse("2006-01-02", strings.TrimSpace(t)); err == nil {
		return iso.Format("2006-01-02"), true
	}

	if m := numericDatePattern.FindStringSubmatch(t); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if date, ok := validDate(year, month, day); ok {
			return date, true
		}
		return "", false
	}

	for idx, name := range weekdayNames {
		if strings.Contains(t, "proximo "+name) || strings.Contains(t, "el "+name) || t == name {
			target := time.Weekday((idx + 1) % 7)
			delta := (int(target) - int(today.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7
			}
			return today.AddDate(0, 0, delta).Format("2006-01-02"), true
		}
	}

	return "", false
}

func validDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Normalize lowercases, trims, and strips Spanish accents so command matching
// works no matter how the message was typed.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u")
	return replacer.Replace(s)
}

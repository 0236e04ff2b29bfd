package command

import (
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Words that may trail a date expression without changing the day.
var mealWords = map[string]bool{
	"morning": true, "afternoon": true, "evening": true, "night": true,
	"breakfast": true, "brunch": true, "lunch": true, "dinner": true, "supper": true,
}

// resolveDate turns a relative day expression into a calendar day in now's
// location. It reports false when the expression is not understood.
func resolveDate(expr string, now time.Time) (time.Time, bool) {
	fields := strings.Fields(strings.Trim(expr, " .!?"))
	fields = trimMealWords(fields)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch len(fields) {
	case 1:
		switch fields[0] {
		case "today", "tonight":
			return today, true
		case "tomorrow":
			return today.AddDate(0, 0, 1), true
		}
	case 2:
		modifier, unit := fields[0], fields[1]
		if modifier != "this" && modifier != "next" {
			return time.Time{}, false
		}
		switch unit {
		case "week":
			if modifier == "this" {
				return today, true
			}
			return today.AddDate(0, 0, 7), true
		case "weekend":
			d := onOrAfter(today, time.Saturday)
			if modifier == "next" {
				d = d.AddDate(0, 0, 7)
			}
			return d, true
		case "month":
			if modifier == "this" {
				return today, true
			}
			return today.AddDate(0, 1, 0), true
		}
		if wd, ok := weekdays[unit]; ok {
			if modifier == "this" {
				return onOrAfter(today, wd), true
			}
			return onOrAfter(today.AddDate(0, 0, 1), wd), true
		}
	}
	return time.Time{}, false
}

func onOrAfter(day time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, delta)
}

// trimMealWords drops a trailing "[for|at] [the] <meal>" phrase.
func trimMealWords(fields []string) []string {
	if n := len(fields); n > 1 && mealWords[fields[n-1]] {
		fields = fields[:n-1]
		for len(fields) > 1 {
			last := fields[len(fields)-1]
			if last != "for" && last != "at" && last != "the" && last != "in" {
				break
			}
			fields = fields[:len(fields)-1]
		}
	}
	return fields
}

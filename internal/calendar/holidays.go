package calendar

import "time"

// HolidayFunc reports the public-holiday name for a date, if any.
type HolidayFunc func(date time.Time) (name string, ok bool)

// easterSunday computes Gregorian Easter for a year (Meeus/Jones/Butcher).
func easterSunday(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// DanishHolidays returns the public-holiday calendar for Denmark. Movable
// feasts are derived from Easter for the requested year, so the function is
// valid for any year. Store Bededag was abolished as a public holiday from
// 2024 onward.
func DanishHolidays() HolidayFunc {
	return func(date time.Time) (string, bool) {
		y, m, d := date.Date()
		loc := date.Location()

		switch {
		case m == time.January && d == 1:
			return "Nytårsdag", true
		case m == time.December && d == 25:
			return "Juledag", true
		case m == time.December && d == 26:
			return "Anden juledag", true
		}

		easter := easterSunday(y, loc)
		sameDay := func(t time.Time) bool {
			ty, tm, td := t.Date()
			return ty == y && tm == m && td == d
		}

		switch {
		case sameDay(easter.AddDate(0, 0, -3)):
			return "Skærtorsdag", true
		case sameDay(easter.AddDate(0, 0, -2)):
			return "Langfredag", true
		case sameDay(easter):
			return "Påskedag", true
		case sameDay(easter.AddDate(0, 0, 1)):
			return "Anden påskedag", true
		case y < 2024 && sameDay(easter.AddDate(0, 0, 26)):
			return "Store bededag", true
		case sameDay(easter.AddDate(0, 0, 39)):
			return "Kristi himmelfartsdag", true
		case sameDay(easter.AddDate(0, 0, 49)):
			return "Pinsedag", true
		case sameDay(easter.AddDate(0, 0, 50)):
			return "Anden pinsedag", true
		}

		return "", false
	}
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekday follows time.Weekday numbering: 0 is Sunday, 6 is Saturday.
type Weekday int16

func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

func (w Weekday) Valid() bool {
	return w >= 0 && w <= 6
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int16(w))
	}
	return time.Weekday(w).String()
}

var spanishWeekdays = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

var weekdayNames = func() map[string]Weekday {
	m := make(map[string]Weekday, 28)
	for i, name := range spanishWeekdays {
		m[strings.ToLower(name)] = Weekday(i)
	}
	// accent-less spellings are common in form input
	m["miercoles"] = 3
	m["sabado"] = 6
	for i := time.Sunday; i <= time.Saturday; i++ {
		m[strings.ToLower(i.String())] = Weekday(i)
		m[strings.ToLower(i.String()[:3])] = Weekday(i)
	}
	return m
}()

// ParseWeekday accepts Spanish or English day names, case-insensitively.
func ParseWeekday(name string) (Weekday, error) {
	w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return w, nil
}

func ParseWeekdays(names []string) ([]Weekday, error) {
	out := make([]Weekday, 0, len(names))
	for _, n := range names {
		w, err := ParseWeekday(n)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// SpanishName is the label shown to shop staff and clients.
func (w Weekday) SpanishName() string {
	if !w.Valid() {
		return ""
	}
	return spanishWeekdays[w]
}

package dates

import "fmt"

// Interval is an inclusive range of days.
type Interval struct {
	From Date
	To   Date
}

func (iv Interval) String() string {
	return iv.From.String() + "-" + iv.To.String()
}

// Partition splits [from, to] into chronologically ordered, non-overlapping
// intervals that never cross a month boundary. A range inside one month is
// returned unchanged; otherwise the result is the tail of the first month,
// every full month in between and the head of the last month.
//
// Both dates must be valid and to must not precede from.
func Partition(from, to Date) ([]Interval, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("from date: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, fmt.Errorf("to date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrMalformedInterval, to, from)
	}

	if from.SameMonth(to) {
		return []Interval{{From: from, To: to}}, nil
	}

	months := (to.Year-from.Year)*12 + to.Month - from.Month
	out := make([]Interval, 0, months+1)
	out = append(out, Interval{From: from, To: monthEnd(from.Year, from.Month)})

	year, month := from.Year, from.Month
	for i := 1; i < months; i++ {
		month++
		if month > 12 {
			month = 1
			year++
		}
		out = append(out, Interval{From: Date{Day: 1, Month: month, Year: year}, To: monthEnd(year, month)})
	}

	out = append(out, Interval{From: Date{Day: 1, Month: to.Month, Year: to.Year}, To: to})
	return out, nil
}

func monthEnd(year, month int) Date {
	return Date{Day: DaysIn(year, month), Month: month, Year: year}
}

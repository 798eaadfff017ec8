package aggregate

import (
	"time"

	"github.com/open-sauced/pizza/gitstats/pkg/insights"
)

// Period is the width of a trend bucket.
type Period string

const (
	// MonthEnd buckets by calendar month, labelled with the month's last day.
	MonthEnd Period = "ME"
	// Week buckets by Monday-to-Sunday week, labelled with the Sunday.
	Week Period = "W"
	// Day buckets by calendar day.
	Day Period = "D"
)

var periodLabels = map[Period]string{
	MonthEnd: "month",
	Week:     "week",
	Day:      "day",
}

// DefaultPeriods are the trend periods reported when none are configured.
var DefaultPeriods = []Period{MonthEnd, Week}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := periodLabels[p]; !ok {
		return "", &ConfigurationError{Key: "trend period", Value: s}
	}
	return p, nil
}

// Label returns the human-readable unit of the period.
func (p Period) Label() string {
	return periodLabels[p]
}

// TrendPoint is the number of commits in the bucket ending on End.
type TrendPoint struct {
	End     time.Time
	Commits int
}

// CommitTrend counts records per period bucket across the table's whole time
// span. Buckets without commits are present with a zero count.
func CommitTrend(table *insights.CommitTable, period Period) ([]TrendPoint, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return nil, err
	}

	first, last, ok := table.Span()
	if !ok {
		return nil, nil
	}

	counts := make(map[string]int)
	for i := 0; i < table.Len(); i++ {
		counts[bucketKey(bucketEnd(table.At(i).CommitTime, period))]++
	}

	var points []TrendPoint
	stop := bucketEnd(last, period)
	for b := bucketEnd(first, period); !b.After(stop); b = bucketEnd(b.AddDate(0, 0, 1), period) {
		points = append(points, TrendPoint{End: b, Commits: counts[bucketKey(b)]})
	}
	return points, nil
}

// bucketEnd returns midnight of the last day of the bucket holding t, in t's
// location.
func bucketEnd(t time.Time, period Period) time.Time {
	y, m, d := t.Date()
	switch period {
	case MonthEnd:
		// day zero of the next month is the last day of this one
		return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
	case Week:
		untilSunday := (7 - int(t.Weekday())) % 7
		return time.Date(y, m, d+untilSunday, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

func bucketKey(t time.Time) string {
	return t.Format("2006-01-02")
}

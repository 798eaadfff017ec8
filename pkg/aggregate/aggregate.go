// package aggregate computes the summaries reported for a commit table. Every
// function here is a read-only pass over the table.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/open-sauced/pizza/gitstats/pkg/insights"
)

// ConfigurationError is returned when an aggregation is asked for with an
// unsupported parameter.
type ConfigurationError struct {
	Key   string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported %s %q", e.Key, e.Value)
}

// ContributorCount is the number of commits authored under one name.
type ContributorCount struct {
	Name    string
	Commits int
}

// TopContributors counts records per author name and returns the n largest
// counts, descending. Equal counts keep the order in which the authors first
// appear in the table.
func TopContributors(table *insights.CommitTable, n int) []ContributorCount {
	index := make(map[string]int)
	var counts []ContributorCount
	for i := 0; i < table.Len(); i++ {
		name := table.At(i).AuthorName
		pos, ok := index[name]
		if !ok {
			pos = len(counts)
			index[name] = pos
			counts = append(counts, ContributorCount{Name: name})
		}
		counts[pos].Commits++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Commits > counts[j].Commits
	})

	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// YearChurn is the line churn of one calendar year.
type YearChurn struct {
	Year       int
	Insertions int
	Deletions  int
	NetChange  int
}

// ChurnByYear sums insertions and deletions per calendar year of commit time,
// years ascending.
func ChurnByYear(table *insights.CommitTable) []YearChurn {
	byYear := make(map[int]*YearChurn)
	var years []int
	for i := 0; i < table.Len(); i++ {
		r := table.At(i)
		year := r.CommitTime.Year()
		yc, ok := byYear[year]
		if !ok {
			yc = &YearChurn{Year: year}
			byYear[year] = yc
			years = append(years, year)
		}
		yc.Insertions += r.Insertions
		yc.Deletions += r.Deletions
	}

	sort.Ints(years)
	out := make([]YearChurn, 0, len(years))
	for _, y := range years {
		yc := byYear[y]
		yc.NetChange = yc.Insertions - yc.Deletions
		out = append(out, *yc)
	}
	return out
}

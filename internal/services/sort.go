package services

import (
	"sort"
	"strings"
	"time"

	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/samber/lo"
)

type sortable struct {
	record opendata.JobRecord
	posted time.Time
	title  string
	salary float64
}

// sortRecords returns a stably sorted copy. Missing dates and salaries compare as zero values,
// so they come first in ascending orders and last in descending ones.
func sortRecords(records []opendata.JobRecord, order entities.SortOrder) []opendata.JobRecord {
	keyed := lo.Map(records, func(r opendata.JobRecord, _ int) sortable {
		salary, _ := r.SalaryFrom()
		return sortable{record: r, posted: r.PostedAt(), title: strings.ToLower(r.BusinessTitle), salary: salary}
	})

	var less func(a, b sortable) bool
	switch order {
	case entities.SortDateAsc:
		less = func(a, b sortable) bool { return a.posted.Before(b.posted) }
	case entities.SortTitleAsc:
		less = func(a, b sortable) bool { return a.title < b.title }
	case entities.SortTitleDesc:
		less = func(a, b sortable) bool { return a.title > b.title }
	case entities.SortSalaryAsc:
		less = func(a, b sortable) bool { return a.salary < b.salary }
	case entities.SortSalaryDesc:
		less = func(a, b sortable) bool { return a.salary > b.salary }
	default:
		less = func(a, b sortable) bool { return a.posted.After(b.posted) }
	}

	sort.SliceStable(keyed, func(i, j int) bool { return less(keyed[i], keyed[j]) })

	return lo.Map(keyed, func(s sortable, _ int) opendata.JobRecord { return s.record })
}

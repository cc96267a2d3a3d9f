package services

import (
	"strings"

	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
)

// matchesQuery evaluates in-process the same predicate opendata.WhereFromQuery sends upstream.
// A record whose salary bound is missing or unparseable never satisfies a filter on that bound.
func matchesQuery(record opendata.JobRecord, query entities.SearchQuery) bool {

	if query.Text != "" &&
		!containsFold(record.BusinessTitle, query.Text) &&
		!containsFold(record.JobDescription, query.Text) &&
		!containsFold(record.CivilServiceTitle, query.Text) {
		return false
	}

	if query.Category != "" && strings.ToLower(record.JobCategory) != query.Category {
		return false
	}

	if query.Location != "" &&
		!containsFold(record.WorkLocation, query.Location) &&
		!containsFold(record.WorkLocation1, query.Location) {
		return false
	}

	if query.SalaryMin != nil {
		from, ok := record.SalaryFrom()
		if !ok || from < float64(*query.SalaryMin) {
			return false
		}
	}

	if query.SalaryMax != nil {
		to, ok := record.SalaryTo()
		if !ok || to > float64(*query.SalaryMax) {
			return false
		}
	}

	return true
}

// containsFold expects term to be lower-cased already.
func containsFold(value, term string) bool {
	return strings.Contains(strings.ToLower(value), term)
}

package opendata

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/maxaizer/jobs-board/internal/entities"
)

// BatchParams describes one page of the feed. A non-empty Where turns the request into a
// filtered query, which the feed silently caps at its row limit.
type BatchParams struct {
	Offset int
	Limit  int
	Where  string
	Order  string
}

func (p BatchParams) Validate() error {
	if p.Offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}

func (p BatchParams) ToUrlParams() url.Values {
	params := url.Values{}
	params.Add("$limit", strconv.Itoa(p.Limit))
	params.Add("$offset", strconv.Itoa(p.Offset))

	if p.Where != "" {
		params.Add("$where", p.Where)
	}

	if p.Order != "" {
		params.Add("$order", p.Order)
	}

	return params
}

// WhereFromQuery translates a search query into the feed's boolean filter expression.
// The query terms are already lower-cased by entities.NewSearchQuery.
func WhereFromQuery(query entities.SearchQuery) string {
	var conditions []string

	if query.Text != "" {
		pattern := likePattern(query.Text)
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(business_title) LIKE %[1]s OR LOWER(job_description) LIKE %[1]s OR LOWER(civil_service_title) LIKE %[1]s)",
			pattern))
	}

	if query.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(job_category) = %s", quote(query.Category)))
	}

	if query.Location != "" {
		pattern := likePattern(query.Location)
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(work_location) LIKE %[1]s OR LOWER(work_location_1) LIKE %[1]s)", pattern))
	}

	if query.SalaryMin != nil {
		conditions = append(conditions, fmt.Sprintf("salary_range_from >= %d", *query.SalaryMin))
	}

	if query.SalaryMax != nil {
		conditions = append(conditions, fmt.Sprintf("salary_range_to <= %d", *query.SalaryMax))
	}

	return strings.Join(conditions, " AND ")
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func likePattern(value string) string {
	return quote("%" + value + "%")
}

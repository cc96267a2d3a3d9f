package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

type SortOrder string

const (
	SortDateDesc   SortOrder = "date_desc"
	SortDateAsc    SortOrder = "date_asc"
	SortTitleAsc   SortOrder = "title_asc"
	SortTitleDesc  SortOrder = "title_desc"
	SortSalaryAsc  SortOrder = "salary_asc"
	SortSalaryDesc SortOrder = "salary_desc"
)

var SortOrders = []SortOrder{SortDateDesc, SortDateAsc, SortTitleAsc, SortTitleDesc, SortSalaryAsc, SortSalaryDesc}

func ToSortOrder(s string) (SortOrder, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortDateDesc, true
	}
	for _, order := range SortOrders {
		if string(order) == s {
			return order, true
		}
	}
	return "", false
}

// SearchQuery is a normalized set of search parameters. Two queries that differ only in
// surrounding whitespace or letter case have the same Key.
type SearchQuery struct {
	Text      string
	Category  string
	Location  string
	SalaryMin *int
	SalaryMax *int
	Sort      SortOrder
}

func NewSearchQuery(text, category, location string, salaryMin, salaryMax *int, sort SortOrder) SearchQuery {
	if sort == "" {
		sort = SortDateDesc
	}
	return SearchQuery{
		Text:      normalizeTerm(text),
		Category:  normalizeTerm(category),
		Location:  normalizeTerm(location),
		SalaryMin: salaryMin,
		SalaryMax: salaryMax,
		Sort:      sort,
	}
}

func (q SearchQuery) HasFilters() bool {
	return q.Text != "" || q.Category != "" || q.Location != "" || q.SalaryMin != nil || q.SalaryMax != nil
}

func (q SearchQuery) Key() string {
	sort := q.Sort
	if sort == "" {
		sort = SortDateDesc
	}
	signature := strings.Join([]string{
		normalizeTerm(q.Text),
		normalizeTerm(q.Category),
		normalizeTerm(q.Location),
		optionalInt(q.SalaryMin),
		optionalInt(q.SalaryMax),
		string(sort),
	}, "\x1f")
	hash := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(hash[:])
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

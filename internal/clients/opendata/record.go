package opendata

import (
	"strconv"
	"strings"
	"time"
)

// JobRecord is one row of the open-data jobs feed. The feed serializes every column as a
// string and any of them may be missing.
type JobRecord struct {
	JobID                     string `json:"job_id"`
	Agency                    string `json:"agency,omitempty"`
	PostingType               string `json:"posting_type,omitempty"`
	NumberOfPositions         string `json:"number_of_positions,omitempty"`
	BusinessTitle             string `json:"business_title,omitempty"`
	CivilServiceTitle         string `json:"civil_service_title,omitempty"`
	TitleClassification       string `json:"title_classification,omitempty"`
	TitleCodeNo               string `json:"title_code_no,omitempty"`
	Level                     string `json:"level,omitempty"`
	JobCategory               string `json:"job_category,omitempty"`
	FullTimePartTimeIndicator string `json:"full_time_part_time_indicator,omitempty"`
	CareerLevel               string `json:"career_level,omitempty"`
	SalaryRangeFrom           string `json:"salary_range_from,omitempty"`
	SalaryRangeTo             string `json:"salary_range_to,omitempty"`
	SalaryFrequency           string `json:"salary_frequency,omitempty"`
	WorkLocation              string `json:"work_location,omitempty"`
	DivisionWorkUnit          string `json:"division_work_unit,omitempty"`
	JobDescription            string `json:"job_description,omitempty"`
	MinimumQualRequirements   string `json:"minimum_qual_requirements,omitempty"`
	PreferredSkills           string `json:"preferred_skills,omitempty"`
	AdditionalInformation     string `json:"additional_information,omitempty"`
	ToApply                   string `json:"to_apply,omitempty"`
	HoursShift                string `json:"hours_shift,omitempty"`
	WorkLocation1             string `json:"work_location_1,omitempty"`
	ResidencyRequirement      string `json:"residency_requirement,omitempty"`
	PostingDate               string `json:"posting_date,omitempty"`
	PostUntil                 string `json:"post_until,omitempty"`
	PostingUpdated            string `json:"posting_updated,omitempty"`
	ProcessDate               string `json:"process_date,omitempty"`
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
}

// PostedAt returns the zero time when the posting date is missing or unparseable.
func (r JobRecord) PostedAt() time.Time {
	return parseDate(r.PostingDate)
}

func (r JobRecord) SalaryFrom() (float64, bool) {
	return parseAmount(r.SalaryRangeFrom)
}

func (r JobRecord) SalaryTo() (float64, bool) {
	return parseAmount(r.SalaryRangeTo)
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseAmount(value string) (float64, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	value = strings.TrimPrefix(value, "$")
	if value == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
